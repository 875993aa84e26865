// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"container/list"
	"sync"

	"github.com/gorilla/websocket"
)

// session is one device's websocket connection, from accept to teardown. It
// is kept in two maps on the LoadBalancer: clients, keyed by ClientID, and
// devices, keyed by DeviceID once the device has logged in.
//
// sendMu guards both writes to conn and mutation of pending, so that a write
// racing a pending-queue update (enqueue from the application side, dequeue
// from a device reply) can never interleave. The registry's mu must never be
// acquired while holding a session's sendMu; the reverse order is always safe.
type session struct {
	clientID int64
	worker   int

	conn *websocket.Conn

	sendMu  sync.Mutex
	closed  bool
	pending *list.List

	// deviceID and attrs are written by registry.assignDevice, under the
	// registry's mu, at each successful login on this connection. Readers
	// look the session up through the registry and read these fields after
	// releasing its mu.
	deviceID string
	attrs    map[string]string
}

func newSession(clientID int64, worker int, conn *websocket.Conn) *session {
	return &session{
		clientID: clientID,
		worker:   worker,
		conn:     conn,
		pending:  newPendingQueue(),
	}
}

// send writes a text frame to the device. It reports errConnectionClosed if
// the session has already been torn down instead of writing to a dead
// connection.
func (s *session) send(payload string) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return errConnectionClosed
	}

	return s.conn.WriteMessage(websocket.TextMessage, []byte(payload))
}

// enqueue registers a new pending command and returns it. The caller awaits
// p.done after releasing any locks it holds.
func (s *session) enqueue() *pendingCommand {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	p := &pendingCommand{done: make(chan struct{})}
	p.elem = s.pending.PushBack(p)
	return p
}

// enqueueAndSend is SendAndReceive's entry point onto this session: within a
// single sendMu critical section it rejects a closed session, registers a
// new pending command, and writes payload to the device. Folding the closed
// check, the append, and the send into one critical section (per spec.md
// §4.5 step 3) closes the window a separate enqueue-then-send would leave
// open for a concurrent teardown to observe a closed session with a
// non-empty pending list.
func (s *session) enqueueAndSend(payload string) (*pendingCommand, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return nil, errDeviceOffline
	}

	p := &pendingCommand{done: make(chan struct{})}
	p.elem = s.pending.PushBack(p)

	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		p.abort(s.pending, err)
		return p, err
	}

	return p, nil
}

// completeOldest fulfills the oldest outstanding pending command with a
// device reply frame. It reports false if there was nothing pending, which
// the caller treats as an unsolicited frame worth logging but not fatal.
func (s *session) completeOldest(response string) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	front := s.pending.Front()
	if front == nil {
		return false
	}

	front.Value.(*pendingCommand).fulfill(s.pending, response)
	return true
}

// abortOne aborts a single pending command, typically because the caller's
// context or timeout fired first. It is a no-op if the command was already
// completed (fulfilled or aborted) concurrently.
func (s *session) abortOne(p *pendingCommand, err error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if p.elem == nil {
		return
	}

	p.abort(s.pending, err)
}

// teardown marks the session closed and aborts every pending command still
// queued against it, so no application goroutine blocks forever on a device
// that has disconnected mid-request.
func (s *session) teardown(err error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for {
		front := s.pending.Front()
		if front == nil {
			break
		}
		front.Value.(*pendingCommand).abort(s.pending, err)
	}

	_ = s.conn.Close()
}
