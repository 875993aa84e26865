// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the small, internal wire vocabularies used by the
// device broker: the opcodes exchanged between the load balancer and its
// workers, and the opcodes exchanged between the load balancer and
// application clients over the IPC control socket.
package protocol

// ControlOp is an opcode sent from the load balancer to a worker.
type ControlOp int

const (
	// ClientConnected notifies a worker that a new device connection has been
	// assigned to it. Reserved for future hooks; a worker may no-op on it.
	ClientConnected ControlOp = iota + 1

	// MessageFromClient carries one raw device frame to be parsed by the worker.
	MessageFromClient

	// ClientDisconnected notifies a worker that a device connection has ended,
	// so it can drop any local per-client state (e.g. login status).
	ClientDisconnected
)

func (op ControlOp) String() string {
	switch op {
	case ClientConnected:
		return "CLIENT_CONNECTED"
	case MessageFromClient:
		return "MESSAGE_FROM_CLIENT"
	case ClientDisconnected:
		return "CLIENT_DISCONNECTED"
	default:
		return "UNKNOWN_CONTROL_OP"
	}
}

// WorkerOp is an opcode sent from a worker back to the load balancer.
type WorkerOp int

const (
	// AssignDeviceID reports that a device has completed login and should be
	// given a stable device identity in the load balancer's devices map.
	AssignDeviceID WorkerOp = iota + 101

	// SendMessageToClient carries a reply frame that the load balancer should
	// write to the device's websocket.
	SendMessageToClient

	// ResponseFromDevice carries a raw device frame that isn't itself a new
	// request or event; it completes the oldest pending application request.
	ResponseFromDevice
)

func (op WorkerOp) String() string {
	switch op {
	case AssignDeviceID:
		return "ASSIGN_DEVICE_ID"
	case SendMessageToClient:
		return "SEND_MESSAGE_TO_CLIENT"
	case ResponseFromDevice:
		return "RESPONSE_FROM_DEVICE"
	default:
		return "UNKNOWN_WORKER_OP"
	}
}

// AppOp is an opcode sent from an application client to the load balancer
// over the IPC control socket.
type AppOp int

const (
	// FindDeviceByID looks up a device session by its logged-in device id.
	FindDeviceByID AppOp = iota + 201

	// SendAndReceive sends a request payload to a device and awaits its reply.
	SendAndReceive

	// GetAllOnlineDevices lists every currently logged-in device.
	GetAllOnlineDevices

	// GetConnectionInfo looks up a device session by its client id.
	GetConnectionInfo
)

func (op AppOp) String() string {
	switch op {
	case FindDeviceByID:
		return "FIND_DEVICE_BY_ID"
	case SendAndReceive:
		return "SEND_AND_RECEIVE"
	case GetAllOnlineDevices:
		return "GET_ALL_ONLINE_DEVICES"
	case GetConnectionInfo:
		return "GET_CONNECTION_INFO"
	default:
		return "UNKNOWN_APP_OP"
	}
}
