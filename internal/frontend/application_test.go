// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen(t *testing.T) {
	t.Run("UnixSocket", testListenUnixSocket)
	t.Run("TCP", testListenTCP)
}

func testListenUnixSocket(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "broker.sock")
	l, err := Listen(path)
	require.NoError(err)
	defer l.Close()

	assert.Equal("unix", l.Addr().Network())
}

func testListenTCP(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	l, err := Listen("127.0.0.1:0")
	require.NoError(err)
	defer l.Close()

	assert.Equal("tcp", l.Addr().Network())
}
