// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package protocol

// ControlMessage is sent from the load balancer to exactly one worker, over
// that worker's dedicated in-process channel. The balancer never inspects
// Payload; it is the raw device frame as received off the websocket.
type ControlMessage struct {
	Op       ControlOp
	ClientID int64
	Payload  string
}

// WorkerEvent is sent from a worker back to the load balancer's per-worker
// event channel.
type WorkerEvent struct {
	Op       WorkerOp
	ClientID int64

	// DeviceID and Attrs are populated for AssignDeviceID.
	DeviceID string
	Attrs    map[string]string

	// Payload is populated for SendMessageToClient and ResponseFromDevice.
	Payload string
}

// AppRequest is one message read off the application IPC control socket.
type AppRequest struct {
	Op AppOp

	// DeviceID is used by FindDeviceByID.
	DeviceID string

	// ClientID is used by GetConnectionInfo and SendAndReceive.
	ClientID int64

	// Payload is the outbound request body for SendAndReceive.
	Payload string
}

// OnlineDeviceInfo is the snapshot returned for one device by
// GetAllOnlineDevices.
type OnlineDeviceInfo struct {
	DeviceID string
	ClientID int64
	Attrs    map[string]string
}

// AppResponse is the single reply sent back for an AppRequest. Exactly one of
// the op-specific fields is meaningful, mirroring the tuple shapes returned
// by the original Python implementation's process_message_from_application.
type AppResponse struct {
	// Found reports whether FindDeviceByID / GetConnectionInfo matched a
	// session. When false, ClientID/DeviceID/Attrs are zero values.
	Found    bool
	ClientID int64
	DeviceID string
	Attrs    map[string]string

	// Devices is populated for GetAllOnlineDevices.
	Devices []OnlineDeviceInfo

	// Success, Error, and Response are populated for SendAndReceive.
	Success  bool
	Error    string
	Response string
}
