// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package healthz wires the broker's online-device counts into this
// module's health monitor and exposes both it and the Prometheus registry
// on a small debug HTTP mux, adapted from server/webpa.go's Basic server
// pattern without that file's TLS/alternate-address richness, which this
// broker has no use for.
package healthz

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/health"
	"github.com/xmidt-org/devicebroker/httperror"
	"github.com/xmidt-org/devicebroker/internal/broker"
	"github.com/xmidt-org/devicebroker/xhttp"
	"github.com/xmidt-org/devicebroker/xhttp/xtimeout"
	"github.com/xmidt-org/devicebroker/xmetrics"
)

// DefaultRequestTimeout bounds how long a single /health or /metrics request
// may run before the debug mux answers with 504 rather than hang a scrape.
const DefaultRequestTimeout = 5 * time.Second

// Stat keys this package feeds into the health monitor, in addition to the
// memory/request stats health.New adds automatically.
const (
	OnlineDevices    health.Stat = "OnlineDevices"
	ConnectedClients health.Stat = "ConnectedClients"
)

// Server is the broker's debug HTTP surface: /health and /metrics.
type Server struct {
	Health  *health.Health
	Handler http.Handler
}

// New builds a Server. registry may be nil, in which case /metrics is
// omitted.
func New(logger *zap.Logger, pollInterval time.Duration, registry xmetrics.Registry) *Server {
	h := health.New(pollInterval, logger, OnlineDevices, ConnectedClients)

	router := mux.NewRouter()
	chain := alice.New(
		xtimeout.NewConstructor(xtimeout.Options{Timeout: DefaultRequestTimeout}),
		xhttp.StaticHeaders(http.Header{"Server": []string{"devicebroker"}}),
	)

	router.Handle("/health", chain.Then(h)).Methods(http.MethodGet)
	if registry != nil {
		router.Handle("/metrics", chain.Then(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httperror.Formatf(w, http.StatusNotFound, "no such route: %s", r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httperror.Formatf(w, http.StatusMethodNotAllowed, "method %s not allowed on %s", r.Method, r.URL.Path)
	})

	return &Server{Health: h, Handler: router}
}

// Poll publishes a LoadBalancer's current counts to the health monitor. The
// caller is expected to invoke this on a timer alongside Health.Run.
func (s *Server) Poll(lb *broker.LoadBalancer) {
	clients, devices := lb.Counts()
	s.Health.SendEvent(health.Set(OnlineDevices, devices))
	s.Health.SendEvent(health.Set(ConnectedClients, clients))
}
