// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package ipc is the application-facing client library for the device
// broker's control socket: the same role client.py plays for the original
// implementation, ported onto a net.Conn and the msgpack framing in
// internal/protocol instead of a Python multiprocessing.connection pipe.
package ipc

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/xmidt-org/devicebroker/internal/protocol"
)

// Device describes one device connection as reported by the broker. DeviceID
// is empty for a connection returned by GetOnlineDevice that has not logged in.
type Device struct {
	ConnectionID int64
	Attributes   map[string]string
	DeviceID     string
}

// Client is a connection to the broker's application control socket. Each
// call writes a request and then blocks for the matching response while
// holding mu, so concurrent calls on one Client are serialized: a call waits
// until every earlier call has received its response.
type Client struct {
	conn net.Conn
	w    *protocol.FrameWriter
	r    *protocol.FrameReader
	mu   sync.Mutex
}

// Dial connects to the broker's control socket. address is a "host:port"
// TCP address if it contains a colon, otherwise a filesystem path to a UNIX
// domain socket; this mirrors how the server frontend decides which
// listener to bind (see spec.md's discussion of the application socket).
func Dial(address string) (*Client, error) {
	network := "unix"
	if strings.Contains(address, ":") {
		network = "tcp"
	}

	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn: conn,
		w:    protocol.NewFrameWriter(conn),
		r:    protocol.NewFrameReader(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// FindDevice looks up a device by its logged-in device id. It returns nil,
// nil if no such device is currently online.
func (c *Client) FindDevice(deviceID string) (*Device, error) {
	resp, err := c.roundTrip(protocol.AppRequest{Op: protocol.FindDeviceByID, DeviceID: deviceID})
	if err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	return &Device{ConnectionID: resp.ClientID, Attributes: resp.Attrs, DeviceID: deviceID}, nil
}

// GetAllOnlineDevices lists every currently logged-in device.
func (c *Client) GetAllOnlineDevices() ([]Device, error) {
	resp, err := c.roundTrip(protocol.AppRequest{Op: protocol.GetAllOnlineDevices})
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		devices = append(devices, Device{ConnectionID: d.ClientID, DeviceID: d.DeviceID, Attributes: d.Attrs})
	}
	return devices, nil
}

// GetOnlineDevice looks up a connected device by its client id. It returns
// nil, nil if connectionID is not currently connected.
func (c *Client) GetOnlineDevice(connectionID int64) (*Device, error) {
	resp, err := c.roundTrip(protocol.AppRequest{Op: protocol.GetConnectionInfo, ClientID: connectionID})
	if err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	return &Device{ConnectionID: connectionID, Attributes: resp.Attrs, DeviceID: resp.DeviceID}, nil
}

// ExecuteCommand sends request to the device identified by connectionID and
// returns its reply, blocking until the broker's command timeout elapses or
// the device responds.
func (c *Client) ExecuteCommand(connectionID int64, request string) (string, error) {
	resp, err := c.roundTrip(protocol.AppRequest{Op: protocol.SendAndReceive, ClientID: connectionID, Payload: request})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", errors.New(resp.Error)
	}
	return resp.Response, nil
}

func (c *Client) roundTrip(req protocol.AppRequest) (*protocol.AppResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.w.WriteRequest(&req); err != nil {
		return nil, fmt.Errorf("ipc: write request: %w", err)
	}

	resp, err := c.r.ReadResponse()
	if err != nil {
		return nil, fmt.Errorf("ipc: read response: %w", err)
	}

	return resp, nil
}
