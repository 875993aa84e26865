// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmidt-org/devicebroker/internal/protocol"
)

// pipedClient wraps one end of a net.Pipe as a Client and hands the test the
// other end's frame reader/writer to act as a fake broker.
func pipedClient(t *testing.T) (*Client, *protocol.FrameReader, *protocol.FrameWriter) {
	t.Helper()

	clientSide, serverSide := net.Pipe()
	t.Cleanup(func() { clientSide.Close(); serverSide.Close() })

	c := &Client{
		conn: clientSide,
		w:    protocol.NewFrameWriter(clientSide),
		r:    protocol.NewFrameReader(clientSide),
	}
	return c, protocol.NewFrameReader(serverSide), protocol.NewFrameWriter(serverSide)
}

func TestClientFindDevice(t *testing.T) {
	t.Run("Found", testFindDeviceFound)
	t.Run("NotFound", testFindDeviceNotFound)
}

func testFindDeviceFound(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, r, w := pipedClient(t)
	go func() {
		req, err := r.ReadRequest()
		require.NoError(err)
		assert.Equal(protocol.FindDeviceByID, req.Op)
		assert.Equal("SN1", req.DeviceID)
		_ = w.WriteResponse(&protocol.AppResponse{Found: true, ClientID: 7, Attrs: map[string]string{"terminal_type": "T"}})
	}()

	device, err := c.FindDevice("SN1")
	require.NoError(err)
	require.NotNil(device)
	assert.Equal(int64(7), device.ConnectionID)
	assert.Equal("T", device.Attributes["terminal_type"])
}

func testFindDeviceNotFound(t *testing.T) {
	require := require.New(t)

	c, r, w := pipedClient(t)
	go func() {
		_, _ = r.ReadRequest()
		_ = w.WriteResponse(&protocol.AppResponse{Found: false})
	}()

	device, err := c.FindDevice("nope")
	require.NoError(err)
	require.Nil(device)
}

func TestClientExecuteCommand(t *testing.T) {
	t.Run("Success", testExecuteCommandSuccess)
	t.Run("Failure", testExecuteCommandFailure)
}

func testExecuteCommandSuccess(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, r, w := pipedClient(t)
	go func() {
		req, err := r.ReadRequest()
		require.NoError(err)
		assert.Equal(protocol.SendAndReceive, req.Op)
		assert.Equal("request", req.Payload)
		_ = w.WriteResponse(&protocol.AppResponse{Success: true, Response: "reply"})
	}()

	resp, err := c.ExecuteCommand(1, "request")
	require.NoError(err)
	assert.Equal("reply", resp)
}

func testExecuteCommandFailure(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, r, w := pipedClient(t)
	go func() {
		_, _ = r.ReadRequest()
		_ = w.WriteResponse(&protocol.AppResponse{Success: false, Error: "Device is offline"})
	}()

	_, err := c.ExecuteCommand(999, "request")
	require.Error(err)
	assert.Equal("Device is offline", err.Error())
}

func TestClientGetAllOnlineDevices(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, r, w := pipedClient(t)
	go func() {
		_, _ = r.ReadRequest()
		_ = w.WriteResponse(&protocol.AppResponse{
			Devices: []protocol.OnlineDeviceInfo{
				{DeviceID: "SN1", ClientID: 1, Attrs: map[string]string{"terminal_type": "T"}},
				{DeviceID: "SN2", ClientID: 2, Attrs: map[string]string{"terminal_type": "U"}},
			},
		})
	}()

	devices, err := c.GetAllOnlineDevices()
	require.NoError(err)
	require.Len(devices, 2)
	assert.Equal("SN1", devices[0].DeviceID)
	assert.Equal("SN2", devices[1].DeviceID)
}
