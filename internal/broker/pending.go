// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import "container/list"

// pendingCommand is one outstanding application request awaiting a reply
// frame from a device. A device's replies are not correlated by any request
// id of their own, so the load balancer pairs them strictly FIFO: the oldest
// outstanding request on a session is the one the next reply frame completes.
type pendingCommand struct {
	// done is closed exactly once, after response/err have been set.
	done     chan struct{}
	response string
	err      error

	// elem is this command's node in its session's pending list, or nil once
	// it has been removed (either fulfilled or the session was torn down).
	elem *list.Element
}

// fulfill completes the command with a successful reply and unlinks it from
// its session's pending list. Safe to call at most once.
func (p *pendingCommand) fulfill(owner *list.List, response string) {
	p.response = response
	p.finish(owner)
}

// abort completes the command with an error (timeout or connection loss) and
// unlinks it from its session's pending list. Safe to call at most once.
func (p *pendingCommand) abort(owner *list.List, err error) {
	p.err = err
	p.finish(owner)
}

func (p *pendingCommand) finish(owner *list.List) {
	if p.elem != nil {
		owner.Remove(p.elem)
		p.elem = nil
	}
	close(p.done)
}

// newPendingQueue returns an empty FIFO queue of pending commands for one
// session. container/list gives O(1) push-back and O(1) removal from the
// middle, which is what lets abort() on a stale command (e.g. a session
// close racing a timeout) unlink itself without scanning the list.
func newPendingQueue() *list.List {
	return list.New()
}
