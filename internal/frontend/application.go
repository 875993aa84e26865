// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"context"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/internal/broker"
	"github.com/xmidt-org/devicebroker/internal/protocol"
)

// ApplicationServer accepts connections on the application control socket
// and serves AppRequest/AppResponse pairs against the load balancer, the Go
// counterpart of serve_application.
type ApplicationServer struct {
	lb     *broker.LoadBalancer
	logger *zap.Logger
}

// NewApplicationServer builds an ApplicationServer.
func NewApplicationServer(lb *broker.LoadBalancer, logger *zap.Logger) *ApplicationServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationServer{lb: lb, logger: logger}
}

// Listen binds address and returns a net.Listener: a UNIX domain socket if
// address contains no colon, a TCP listener otherwise. This mirrors the
// address-parsing rule client.py/ipc.Dial use to reach it.
func Listen(address string) (net.Listener, error) {
	if strings.Contains(address, ":") {
		return net.Listen("tcp", address)
	}
	return net.Listen("unix", address)
}

// Serve accepts connections on l until shutdown is closed. Each connection
// is handled by its own goroutine, registered on waitGroup.
func (a *ApplicationServer) Serve(l net.Listener, waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		<-shutdown
		_ = l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-shutdown:
				return nil
			default:
				a.logger.Warn("accept failed", zap.Error(err))
				return err
			}
		}

		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			a.handleConn(conn)
		}()
	}
}

func (a *ApplicationServer) handleConn(conn net.Conn) {
	defer conn.Close()

	r := protocol.NewFrameReader(conn)
	w := protocol.NewFrameWriter(conn)

	for {
		req, err := r.ReadRequest()
		if err != nil {
			return
		}

		resp := a.lb.HandleAppRequest(context.Background(), *req)
		if err := w.WriteResponse(&resp); err != nil {
			return
		}
	}
}
