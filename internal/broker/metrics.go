// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/devicebroker/xmetrics"
)

const (
	// OnlineDevicesGauge tracks the current size of the devices map.
	OnlineDevicesGauge = "online_devices"

	// ConnectedClientsGauge tracks the current size of the clients map,
	// which includes devices that have connected but not yet logged in.
	ConnectedClientsGauge = "connected_clients"

	// PendingCommandsGauge tracks the total number of SendAndReceive calls
	// currently awaiting a device reply, across every session.
	PendingCommandsGauge = "pending_commands"

	// CommandsTimedOutCounter counts SendAndReceive calls that hit
	// Options.CommandTimeout.
	CommandsTimedOutCounter = "commands_timed_out"

	// DeviceFramesCounter counts raw frames read off device connections.
	DeviceFramesCounter = "device_frames"
)

// Measures bundles the metrics the load balancer emits. Fields are go-kit
// metrics handles rather than raw Prometheus types, matching how this
// module's xmetrics registry hands out Provider-backed instruments.
type Measures struct {
	OnlineDevices    metrics.Gauge
	ConnectedClients metrics.Gauge
	PendingCommands  metrics.Gauge
	CommandsTimedOut metrics.Counter
	DeviceFrames     metrics.Counter
}

// Module returns the xmetrics.Metric definitions this package preregisters,
// for passing to xmetrics.NewRegistry as a module function.
func Module() []xmetrics.Metric {
	return []xmetrics.Metric{
		{Name: OnlineDevicesGauge, Type: xmetrics.GaugeType, Help: "Number of devices currently logged in"},
		{Name: ConnectedClientsGauge, Type: xmetrics.GaugeType, Help: "Number of device websocket connections, logged in or not"},
		{Name: PendingCommandsGauge, Type: xmetrics.GaugeType, Help: "Number of SendAndReceive calls awaiting a device reply"},
		{Name: CommandsTimedOutCounter, Type: xmetrics.CounterType, Help: "Number of SendAndReceive calls that timed out"},
		{Name: DeviceFramesCounter, Type: xmetrics.CounterType, Help: "Number of frames read from device connections"},
	}
}

// NewMeasures builds a Measures from a provider, typically an
// xmetrics.Registry. Passing nil yields discard instruments, which is useful
// for tests that don't care about metrics.
func NewMeasures(p provider) Measures {
	if p == nil {
		return Measures{
			OnlineDevices:    discard.NewGauge(),
			ConnectedClients: discard.NewGauge(),
			PendingCommands:  discard.NewGauge(),
			CommandsTimedOut: discard.NewCounter(),
			DeviceFrames:     discard.NewCounter(),
		}
	}

	return Measures{
		OnlineDevices:    p.NewGauge(OnlineDevicesGauge),
		ConnectedClients: p.NewGauge(ConnectedClientsGauge),
		PendingCommands:  p.NewGauge(PendingCommandsGauge),
		CommandsTimedOut: p.NewCounter(CommandsTimedOutCounter),
		DeviceFrames:     p.NewCounter(DeviceFramesCounter),
	}
}

// provider is the subset of go-kit's metrics.Provider that NewMeasures
// needs, so callers can pass an xmetrics.Registry without this package
// importing go-kit's provider package just for the interface name.
type provider interface {
	NewGauge(name string) metrics.Gauge
	NewCounter(name string) metrics.Counter
}
