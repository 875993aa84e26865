// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRequestResponseRoundTrip(t *testing.T) {
	t.Run("Request", testFrameRequestRoundTrip)
	t.Run("Response", testFrameResponseRoundTrip)
	t.Run("MultipleFrames", testFrameMultipleFrames)
	t.Run("EOF", testFrameReaderEOF)
}

func testFrameRequestRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	sent := &AppRequest{Op: SendAndReceive, ClientID: 42, Payload: "<Message/>"}
	require.NoError(w.WriteRequest(sent))

	got, err := NewFrameReader(&buf).ReadRequest()
	require.NoError(err)
	assert.Equal(*sent, *got)
}

func testFrameResponseRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	sent := &AppResponse{
		Devices: []OnlineDeviceInfo{{DeviceID: "SN1", ClientID: 1, Attrs: map[string]string{"terminal_type": "T"}}},
	}
	require.NoError(w.WriteResponse(sent))

	got, err := NewFrameReader(&buf).ReadResponse()
	require.NoError(err)
	assert.Equal(*sent, *got)
}

func testFrameMultipleFrames(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	require.NoError(w.WriteRequest(&AppRequest{Op: FindDeviceByID, DeviceID: "SN1"}))
	require.NoError(w.WriteRequest(&AppRequest{Op: GetAllOnlineDevices}))

	r := NewFrameReader(&buf)

	first, err := r.ReadRequest()
	require.NoError(err)
	assert.Equal(FindDeviceByID, first.Op)

	second, err := r.ReadRequest()
	require.NoError(err)
	assert.Equal(GetAllOnlineDevices, second.Op)
}

func testFrameReaderEOF(t *testing.T) {
	require := require.New(t)

	r := NewFrameReader(&bytes.Buffer{})
	_, err := r.ReadRequest()
	require.ErrorIs(err, io.EOF)
}

func TestOpcodeStrings(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("CLIENT_CONNECTED", ClientConnected.String())
	assert.Equal("MESSAGE_FROM_CLIENT", MessageFromClient.String())
	assert.Equal("CLIENT_DISCONNECTED", ClientDisconnected.String())
	assert.Equal("UNKNOWN_CONTROL_OP", ControlOp(0).String())

	assert.Equal("ASSIGN_DEVICE_ID", AssignDeviceID.String())
	assert.Equal("SEND_MESSAGE_TO_CLIENT", SendMessageToClient.String())
	assert.Equal("RESPONSE_FROM_DEVICE", ResponseFromDevice.String())
	assert.Equal("UNKNOWN_WORKER_OP", WorkerOp(0).String())

	assert.Equal("FIND_DEVICE_BY_ID", FindDeviceByID.String())
	assert.Equal("SEND_AND_RECEIVE", SendAndReceive.String())
	assert.Equal("GET_ALL_ONLINE_DEVICES", GetAllOnlineDevices.String())
	assert.Equal("GET_CONNECTION_INFO", GetConnectionInfo.String())
	assert.Equal("UNKNOWN_APP_OP", AppOp(0).String())
}
