// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsPair dials a real websocket connection against an in-process
// httptest.Server and returns both ends: the server-side *websocket.Conn
// (what a session wraps) and the client-side *websocket.Conn (what a test
// uses to stand in for the device). Using a real socket pair, rather than a
// hand-rolled mock of the connection interface, matches how this module's
// predecessor exercises device.Manager against a live listener.
func wsPair(t *testing.T) (serverConn *websocket.Conn, clientConn *websocket.Conn, closeFn func()) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	connCh := make(chan *websocket.Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		connCh <- conn
	}))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	server1 := <-connCh

	return server1, client, func() {
		_ = client.Close()
		_ = server1.Close()
		server.Close()
	}
}
