// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package frontend holds the two network-facing accept loops: the device
// websocket server and the application IPC server. Both are thin: all
// state lives in internal/broker.LoadBalancer, and a frontend's only job is
// turning network bytes into calls against it.
package frontend

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/internal/broker"
)

// DeviceServer accepts device websocket connections and relays their frames
// to the load balancer, the Go counterpart of serve_device.
type DeviceServer struct {
	lb       *broker.LoadBalancer
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewDeviceServer builds a DeviceServer. The upgrader permits any origin,
// since devices are not browsers and send no Origin header worth enforcing.
func NewDeviceServer(lb *broker.LoadBalancer, logger *zap.Logger) *DeviceServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceServer{
		lb:     lb,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and runs its read loop until the device
// disconnects or the connection errors.
func (d *DeviceServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID, worker := d.lb.AddClient(conn)
	d.logger.Info("device connected", zap.Int64("clientID", clientID), zap.String("remote", r.RemoteAddr))

	var cause error
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			cause = err
			break
		}
		d.lb.Dispatch(clientID, worker, string(payload))
	}

	d.lb.RemoveClient(clientID, worker, cause)
	d.logger.Info("device disconnected", zap.Int64("clientID", clientID), zap.Error(cause))
}
