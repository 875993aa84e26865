// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"io"
	"sync"

	"github.com/ugorji/go/codec"
)

// msgpackHandle is shared by every IPC connection. codec.Handle values are
// safe for concurrent use once configured, so one package-level instance is
// enough; individual connections each get their own Encoder/Decoder.
var msgpackHandle = &codec.MsgpackHandle{}

// FrameWriter serializes AppRequest/AppResponse values onto an IPC
// connection. Msgpack frames are self-delimiting, so no external length
// prefix is needed; successive values are simply encoded back to back and
// the decoder on the other end reads them off one at a time.
type FrameWriter struct {
	mu  sync.Mutex
	enc *codec.Encoder
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{enc: codec.NewEncoder(w, msgpackHandle)}
}

func (fw *FrameWriter) WriteRequest(req *AppRequest) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.enc.Encode(req)
}

func (fw *FrameWriter) WriteResponse(resp *AppResponse) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.enc.Encode(resp)
}

// FrameReader deserializes AppRequest/AppResponse values from an IPC
// connection.
type FrameReader struct {
	dec *codec.Decoder
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{dec: codec.NewDecoder(r, msgpackHandle)}
}

func (fr *FrameReader) ReadRequest() (*AppRequest, error) {
	req := new(AppRequest)
	if err := fr.dec.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (fr *FrameReader) ReadResponse() (*AppResponse, error) {
	resp := new(AppResponse)
	if err := fr.dec.Decode(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
