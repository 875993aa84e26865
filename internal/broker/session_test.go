// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	t.Run("SendWritesFrame", testSessionSendWritesFrame)
	t.Run("SendAfterCloseFails", testSessionSendAfterCloseFails)
	t.Run("TeardownAbortsPending", testSessionTeardownAbortsPending)
	t.Run("TeardownIdempotent", testSessionTeardownIdempotent)
	t.Run("CompleteOldestEmptyQueue", testSessionCompleteOldestEmptyQueue)
	t.Run("CompleteOldestFIFO", testSessionCompleteOldestFIFO)
	t.Run("AbortOneAlreadyUnlinked", testSessionAbortOneAlreadyUnlinked)
}

func testSessionSendWritesFrame(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	serverConn, clientConn, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	require.NoError(s.send("hello"))

	_, payload, err := clientConn.ReadMessage()
	require.NoError(err)
	assert.Equal("hello", string(payload))
}

func testSessionSendAfterCloseFails(t *testing.T) {
	require := require.New(t)

	serverConn, _, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	s.teardown(errConnectionClosed)

	err := s.send("hello")
	require.ErrorIs(err, errConnectionClosed)
}

func testSessionTeardownAbortsPending(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	serverConn, _, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	p1 := s.enqueue()
	p2 := s.enqueue()

	s.teardown(errConnectionClosed)

	require.Eventually(func() bool {
		select {
		case <-p1.done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	<-p2.done
	assert.ErrorIs(p1.err, errConnectionClosed)
	assert.ErrorIs(p2.err, errConnectionClosed)
	assert.Nil(p1.elem)
	assert.Nil(p2.elem)
	assert.True(s.closed)
}

func testSessionTeardownIdempotent(t *testing.T) {
	assert := assert.New(t)

	serverConn, _, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	p := s.enqueue()

	s.teardown(errConnectionClosed)
	assert.NotPanics(func() { s.teardown(errConnectionClosed) })

	// still aborted exactly once: err is whatever the first teardown set.
	assert.ErrorIs(p.err, errConnectionClosed)
}

func testSessionCompleteOldestEmptyQueue(t *testing.T) {
	assert := assert.New(t)

	serverConn, _, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	assert.False(s.completeOldest("reply"))
}

func testSessionCompleteOldestFIFO(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	serverConn, _, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	p1 := s.enqueue()
	p2 := s.enqueue()

	require.True(s.completeOldest("first"))
	select {
	case <-p1.done:
	default:
		t.Fatal("p1 should be fulfilled")
	}
	assert.Equal("first", p1.response)

	require.True(s.completeOldest("second"))
	<-p2.done
	assert.Equal("second", p2.response)
}

func testSessionAbortOneAlreadyUnlinked(t *testing.T) {
	assert := assert.New(t)

	serverConn, _, closeFn := wsPair(t)
	defer closeFn()

	s := newSession(1, 0, serverConn)
	p := s.enqueue()
	s.completeOldest("done")

	// a timeout racing a fulfill must no-op rather than re-fire the promise.
	assert.NotPanics(func() { s.abortOne(p, errTimedOut) })
	assert.Equal("done", p.response)
	assert.NoError(p.err)
}
