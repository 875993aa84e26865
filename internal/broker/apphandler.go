// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"context"

	"github.com/xmidt-org/devicebroker/internal/protocol"
)

// HandleAppRequest dispatches one application IPC request to the matching
// LoadBalancer operation and builds the AppResponse to send back. This is
// the Go counterpart of the original implementation's
// process_message_from_application.
func (lb *LoadBalancer) HandleAppRequest(ctx context.Context, req protocol.AppRequest) protocol.AppResponse {
	switch req.Op {
	case protocol.FindDeviceByID:
		clientID, attrs, found := lb.FindDevice(req.DeviceID)
		return protocol.AppResponse{Found: found, ClientID: clientID, Attrs: attrs}

	case protocol.GetAllOnlineDevices:
		return protocol.AppResponse{Devices: lb.OnlineDevices()}

	case protocol.GetConnectionInfo:
		deviceID, attrs, found := lb.ConnectionInfo(req.ClientID)
		return protocol.AppResponse{Found: found, DeviceID: deviceID, Attrs: attrs}

	case protocol.SendAndReceive:
		response, err := lb.SendAndReceive(ctx, req.ClientID, req.Payload)
		if err != nil {
			return protocol.AppResponse{Success: false, Error: err.Error()}
		}
		return protocol.AppResponse{Success: true, Response: response}

	default:
		return protocol.AppResponse{Success: false, Error: "unrecognized request"}
	}
}
