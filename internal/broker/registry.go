// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import "sync"

// registry holds every online session, indexed two ways: by client id (every
// connected device, logged in or not) and by device id (only devices that
// have completed login). A single mutex guards both maps and the client id
// counter; this module never takes a second lock while holding it, and
// always releases it before touching a session's own sendMu. See session.go
// for the reverse ordering rule.
type registry struct {
	mu sync.Mutex

	nextClientID int64
	clients      map[int64]*session
	devices      map[string]*session
}

func newRegistry() *registry {
	return &registry{
		clients: make(map[int64]*session),
		devices: make(map[string]*session),
	}
}

// register assigns the next client id to a newly accepted device connection
// and adds it to the clients map.
func (r *registry) register(s *session) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextClientID++
	s.clientID = r.nextClientID
	r.clients[s.clientID] = s
	return s.clientID
}

// unregister removes a session from both maps and returns the session that
// was removed from the clients map, or nil if clientID was not registered.
// The devices map entry is removed only if it still points at this session,
// so a duplicate login's winner is left in place.
func (r *registry) unregister(clientID int64) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.clients[clientID]
	if !ok {
		return nil
	}
	delete(r.clients, clientID)

	if s.deviceID != "" {
		if current, ok := r.devices[s.deviceID]; ok && current == s {
			delete(r.devices, s.deviceID)
		}
	}

	return s
}

// assignDevice publishes a session under a device id once it has logged in.
// If another session already holds that device id, the prior session is
// evicted (last writer wins) and returned so the caller can force it closed
// outside the lock.
func (r *registry) assignDevice(deviceID string, s *session, attrs map[string]string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted *session
	if existing, ok := r.devices[deviceID]; ok && existing != s {
		evicted = existing
	}

	if s.deviceID != "" && s.deviceID != deviceID {
		if current, ok := r.devices[s.deviceID]; ok && current == s {
			delete(r.devices, s.deviceID)
		}
	}

	s.deviceID = deviceID
	s.attrs = attrs
	r.devices[deviceID] = s
	return evicted
}

func (r *registry) byClientID(clientID int64) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.clients[clientID]
	return s, ok
}

func (r *registry) byDeviceID(deviceID string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.devices[deviceID]
	return s, ok
}

// onlineDevices returns a point-in-time snapshot of every logged-in device.
func (r *registry) onlineDevices() []*session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*session, 0, len(r.devices))
	for _, s := range r.devices {
		out = append(out, s)
	}
	return out
}

func (r *registry) counts() (clients int, devices int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients), len(r.devices)
}
