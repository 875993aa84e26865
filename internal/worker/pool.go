// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/internal/protocol"
	"github.com/xmidt-org/devicebroker/internal/webapp"
)

// Pool replaces the original implementation's mp.Process-per-worker
// WorkerHost with a goroutine per worker. Workers never share state, so the
// goroutine form needs none of the pipe plumbing the process form required:
// each worker reads its ControlMessage inbox directly from the load
// balancer and writes WorkerEvents to its own outbox channel.
type Pool struct {
	workers  []*Worker
	outboxes []chan protocol.WorkerEvent
}

// NewPool builds a Pool of n workers, each with its own Worker (and thus its
// own login-state map and outbox), all sharing one webapp.Client.
func NewPool(n int, webappClient *webapp.Client, logger *zap.Logger) *Pool {
	p := &Pool{
		workers:  make([]*Worker, n),
		outboxes: make([]chan protocol.WorkerEvent, n),
	}

	for i := range p.workers {
		p.outboxes[i] = make(chan protocol.WorkerEvent, 64)
		p.workers[i] = New(webappClient, logger, p.outboxes[i])
	}

	return p
}

// Outbox returns the channel worker i posts WorkerEvents to.
func (p *Pool) Outbox(i int) <-chan protocol.WorkerEvent {
	return p.outboxes[i]
}

// Run returns a function with concurrent.RunnableFunc's signature that starts
// one goroutine per worker, each draining its inbox until inbox closes or
// shutdown fires.
func (p *Pool) Run(inboxes []<-chan protocol.ControlMessage) func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
	return func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
		for i, w := range p.workers {
			waitGroup.Add(1)
			go func(w *Worker, inbox <-chan protocol.ControlMessage) {
				defer waitGroup.Done()
				w.Run(inbox, shutdown)
			}(w, inboxes[i])
		}
		return nil
	}
}
