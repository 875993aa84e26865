// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package broker is the hub of the device broker: it owns every online
// device's session state, hands device frames off to a fixed pool of
// workers, and pairs the replies those workers or devices produce with
// whichever application request is waiting for them.
package broker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/internal/protocol"
)

// LoadBalancer is the broker's hub. A device's websocket connection is
// accepted by AddClient and torn down by RemoveClient; everything between
// those two calls flows through Dispatch (device frames headed to a worker)
// and ReceiveWorkerEvents, which applies the AssignDeviceID,
// SendMessageToClient and ResponseFromDevice events a worker emits as it
// processes those frames. Application clients
// interact only through FindDevice, SendAndReceive, OnlineDevices, and
// ConnectionInfo.
type LoadBalancer struct {
	opts     Options
	logger   *zap.Logger
	measures Measures

	reg *registry

	// workerIn[i] carries frames assigned to worker i. assignment is sticky
	// per client id via round robin, so a single device's frames are always
	// processed in order by the same worker goroutine.
	workerIn []chan protocol.ControlMessage
	nextIdx  int64
}

// New builds a LoadBalancer with workerIn channels sized for opts.WorkerCount
// workers. The caller is responsible for starting a goroutine per channel
// that reads ControlMessages and drives a worker.Worker; see
// internal/worker.Pool for the standard wiring.
func New(opts Options) *LoadBalancer {
	workerCount := opts.workerCount()
	lb := &LoadBalancer{
		opts:     opts,
		logger:   opts.logger(),
		measures: NewMeasures(nil),
		reg:      newRegistry(),
		workerIn: make([]chan protocol.ControlMessage, workerCount),
	}

	for i := range lb.workerIn {
		lb.workerIn[i] = make(chan protocol.ControlMessage, 64)
	}

	return lb
}

// SetMeasures replaces the discard-backed default metrics with real
// instruments, typically from an xmetrics.Registry built at startup.
func (lb *LoadBalancer) SetMeasures(m Measures) {
	lb.measures = m
}

// WorkerInbox returns the channel worker i reads ControlMessages from.
func (lb *LoadBalancer) WorkerInbox(i int) <-chan protocol.ControlMessage {
	return lb.workerIn[i]
}

// AddClient registers a newly accepted device websocket connection and
// returns its client id plus the worker index it has been assigned to. The
// caller (the device server frontend) owns the connection's read loop and
// must call Dispatch for every frame it reads, and RemoveClient exactly once
// when the loop ends.
func (lb *LoadBalancer) AddClient(conn *websocket.Conn) (clientID int64, worker int) {
	worker = int(atomic.AddInt64(&lb.nextIdx, 1) % int64(len(lb.workerIn)))
	s := newSession(0, worker, conn)
	clientID = lb.reg.register(s)

	clients, devices := lb.reg.counts()
	lb.measures.ConnectedClients.Set(float64(clients))
	lb.measures.OnlineDevices.Set(float64(devices))

	lb.logger.Debug("client connected", zap.Int64("clientID", clientID), zap.Int("worker", worker))

	lb.workerIn[worker] <- protocol.ControlMessage{Op: protocol.ClientConnected, ClientID: clientID}
	return clientID, worker
}

// Dispatch hands one raw device frame to the client's assigned worker.
func (lb *LoadBalancer) Dispatch(clientID int64, worker int, payload string) {
	lb.measures.DeviceFrames.Add(1)
	lb.workerIn[worker] <- protocol.ControlMessage{Op: protocol.MessageFromClient, ClientID: clientID, Payload: payload}
}

// RemoveClient tears down a device connection: it aborts any pending
// SendAndReceive calls against it, removes it from both maps, and notifies
// its worker so per-client state (e.g. login status) can be dropped.
func (lb *LoadBalancer) RemoveClient(clientID int64, worker int, cause error) {
	s := lb.reg.unregister(clientID)
	if s == nil {
		return
	}

	s.teardown(errConnectionClosed)

	clients, devices := lb.reg.counts()
	lb.measures.ConnectedClients.Set(float64(clients))
	lb.measures.OnlineDevices.Set(float64(devices))

	lb.logger.Debug("client disconnected", zap.Int64("clientID", clientID), zap.Error(cause))

	select {
	case lb.workerIn[worker] <- protocol.ControlMessage{Op: protocol.ClientDisconnected, ClientID: clientID}:
	default:
		// Worker inbox is full: the notice is dropped, so the worker keeps
		// this client id's login-state entry. Client ids are never reused,
		// so that entry is never read again; the maps above are already
		// correct.
	}
}

// ReceiveWorkerEvents runs until shutdown is closed, applying every
// WorkerEvent a worker produces. One goroutine per worker should run this
// against that worker's outbox channel.
func (lb *LoadBalancer) ReceiveWorkerEvents(outbox <-chan protocol.WorkerEvent, shutdown <-chan struct{}) {
	for {
		select {
		case evt, ok := <-outbox:
			if !ok {
				return
			}
			lb.applyWorkerEvent(evt)
		case <-shutdown:
			return
		}
	}
}

func (lb *LoadBalancer) applyWorkerEvent(evt protocol.WorkerEvent) {
	switch evt.Op {
	case protocol.AssignDeviceID:
		lb.assignDevice(evt.ClientID, evt.DeviceID, evt.Attrs)
	case protocol.SendMessageToClient:
		lb.sendToClient(evt.ClientID, evt.Payload)
	case protocol.ResponseFromDevice:
		lb.deliverReply(evt.ClientID, evt.Payload)
	}
}

func (lb *LoadBalancer) assignDevice(clientID int64, deviceID string, attrs map[string]string) {
	s, ok := lb.reg.byClientID(clientID)
	if !ok {
		return
	}

	evicted := lb.reg.assignDevice(deviceID, s, attrs)
	if evicted != nil {
		lb.logger.Info("duplicate login, evicting prior session",
			zap.String("deviceID", deviceID), zap.Int64("evictedClientID", evicted.clientID))
		evicted.teardown(errConnectionClosed)
	}

	_, devices := lb.reg.counts()
	lb.measures.OnlineDevices.Set(float64(devices))
}

func (lb *LoadBalancer) sendToClient(clientID int64, payload string) {
	s, ok := lb.reg.byClientID(clientID)
	if !ok {
		return
	}

	if err := s.send(payload); err != nil {
		lb.logger.Warn("failed to write to client", zap.Int64("clientID", clientID), zap.Error(err))
	}
}

func (lb *LoadBalancer) deliverReply(clientID int64, payload string) {
	s, ok := lb.reg.byClientID(clientID)
	if !ok {
		return
	}

	if !s.completeOldest(payload) {
		lb.logger.Debug("unsolicited frame from device with no pending command", zap.Int64("clientID", clientID))
	}
}

// FindDevice reports the client id and attributes of a logged-in device.
func (lb *LoadBalancer) FindDevice(deviceID string) (clientID int64, attrs map[string]string, found bool) {
	s, ok := lb.reg.byDeviceID(deviceID)
	if !ok {
		return 0, nil, false
	}
	return s.clientID, s.attrs, true
}

// ConnectionInfo reports the device id and attributes of a connected client.
func (lb *LoadBalancer) ConnectionInfo(clientID int64) (deviceID string, attrs map[string]string, found bool) {
	s, ok := lb.reg.byClientID(clientID)
	if !ok {
		return "", nil, false
	}
	return s.deviceID, s.attrs, true
}

// Counts reports the current size of the clients and devices maps, for
// health/metrics reporting.
func (lb *LoadBalancer) Counts() (clients int, devices int) {
	return lb.reg.counts()
}

// OnlineDevices lists every currently logged-in device.
func (lb *LoadBalancer) OnlineDevices() []protocol.OnlineDeviceInfo {
	sessions := lb.reg.onlineDevices()
	out := make([]protocol.OnlineDeviceInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, protocol.OnlineDeviceInfo{DeviceID: s.deviceID, ClientID: s.clientID, Attrs: s.attrs})
	}
	return out
}

// SendAndReceive sends payload to the device behind clientID and blocks
// until the device replies, ctx is canceled, or Options.CommandTimeout
// elapses, whichever comes first. It addresses the device by its connection
// (client) id rather than its logged-in device id, matching the original
// implementation: an application client typically learns the client id from
// a prior FindDevice or OnlineDevices call.
func (lb *LoadBalancer) SendAndReceive(ctx context.Context, clientID int64, payload string) (string, error) {
	s, ok := lb.reg.byClientID(clientID)
	if !ok {
		return "", errDeviceOffline
	}

	p, err := s.enqueueAndSend(payload)
	if err != nil {
		return "", err
	}

	lb.measures.PendingCommands.Add(1)
	defer lb.measures.PendingCommands.Add(-1)

	timer := time.NewTimer(lb.opts.commandTimeout())
	defer timer.Stop()

	select {
	case <-p.done:
		return p.response, p.err
	case <-timer.C:
		lb.measures.CommandsTimedOut.Add(1)
		s.abortOne(p, errTimedOut)
		<-p.done
		return p.response, p.err
	case <-ctx.Done():
		s.abortOne(p, ctx.Err())
		<-p.done
		return p.response, p.err
	}
}
