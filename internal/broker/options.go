// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCommandTimeout bounds how long SendAndReceive waits for a device
	// to reply before an application client sees errTimedOut.
	DefaultCommandTimeout = 30 * time.Second

	// DefaultWorkerCount is the number of worker goroutines devices are
	// sharded across, round robin, by client id.
	DefaultWorkerCount = 4
)

// Options configures a LoadBalancer. The zero value is usable: every field
// has a sensible default applied by New.
type Options struct {
	// Logger receives structured events for every device and application
	// connection lifecycle transition. Defaults to zap.NewNop().
	Logger *zap.Logger

	// CommandTimeout bounds SendAndReceive. Defaults to DefaultCommandTimeout.
	CommandTimeout time.Duration

	// WorkerCount is the number of workers devices are sharded across.
	// Defaults to DefaultWorkerCount.
	WorkerCount int
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o Options) commandTimeout() time.Duration {
	if o.CommandTimeout > 0 {
		return o.CommandTimeout
	}
	return DefaultCommandTimeout
}

func (o Options) workerCount() int {
	if o.WorkerCount > 0 {
		return o.WorkerCount
	}
	return DefaultWorkerCount
}
