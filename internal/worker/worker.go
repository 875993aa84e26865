// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package worker parses device frames and talks to the external web
// application on the load balancer's behalf. Each Worker is pinned to a
// single goroutine and owns its own login-state map, so it needs no locking:
// the load balancer guarantees every frame for a given client id always
// lands on the same worker.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/internal/protocol"
	"github.com/xmidt-org/devicebroker/internal/webapp"
)

// Worker consumes ControlMessages for the devices it owns and produces
// WorkerEvents for the load balancer to apply.
type Worker struct {
	webapp *webapp.Client
	logger *zap.Logger
	outbox chan<- protocol.WorkerEvent

	loggedIn map[int64]bool
}

// New builds a Worker that sends its events to outbox.
func New(client *webapp.Client, logger *zap.Logger, outbox chan<- protocol.WorkerEvent) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		webapp:   client,
		logger:   logger,
		outbox:   outbox,
		loggedIn: make(map[int64]bool),
	}
}

// Run drains inbox until it is closed or shutdown fires.
func (w *Worker) Run(inbox <-chan protocol.ControlMessage, shutdown <-chan struct{}) {
	for {
		select {
		case msg, ok := <-inbox:
			if !ok {
				return
			}
			w.process(msg)
		case <-shutdown:
			return
		}
	}
}

func (w *Worker) process(msg protocol.ControlMessage) {
	switch msg.Op {
	case protocol.ClientConnected:
		// No per-client state to initialize until login.
	case protocol.ClientDisconnected:
		delete(w.loggedIn, msg.ClientID)
	case protocol.MessageFromClient:
		w.processFrame(msg.ClientID, msg.Payload)
	}
}

func (w *Worker) processFrame(clientID int64, raw string) {
	frame, err := parseFrame(raw)
	if err != nil {
		w.logger.Warn("malformed device frame", zap.Int64("clientID", clientID), zap.Error(err))
		return
	}

	if reqKind, ok := frame.get(tagRequest); ok {
		switch reqKind {
		case requestRegister:
			w.processRegister(clientID, frame)
		case requestLogin:
			w.processLogin(clientID, frame)
		}
		return
	}

	if evtKind, ok := frame.get(tagEvent); ok {
		if !w.loggedIn[clientID] {
			return
		}
		switch evtKind {
		case eventAdminLog, eventAdminLogV2, eventTimeLog, eventTimeLogV2:
			w.processLog(clientID, evtKind, frame)
		case eventKeepAlive:
			w.processKeepAlive(clientID)
		}
		return
	}

	// Neither a request nor an event: this is a reply to an application
	// request the load balancer has outstanding against this device.
	w.outbox <- protocol.WorkerEvent{Op: protocol.ResponseFromDevice, ClientID: clientID, Payload: raw}
}

const webappTimeout = 15 * time.Second

func (w *Worker) processRegister(clientID int64, frame frameElement) {
	sn, ok := frame.get(tagDeviceSerial)
	if !ok {
		return
	}
	terminalType, _ := frame.get(tagTerminalType)
	productName, _ := frame.get(tagProductName)
	cloudID, _ := frame.get(tagCloudID)

	ctx, cancel := context.WithTimeout(context.Background(), webappTimeout)
	defer cancel()

	result, err := w.webapp.CheckRegistration(ctx, webapp.RegistrationRequest{
		SN:           sn,
		TerminalType: terminalType,
		ProductName:  productName,
		CloudID:      cloudID,
	})
	if err != nil {
		w.logger.Warn("check_registration call failed", zap.String("sn", sn), zap.Error(err))
		return
	}

	b := &frameBuilder{}
	b.add(tagResponse, requestRegister)
	b.add(tagDeviceSerial, sn)
	b.add(tagToken, result.Token)
	b.add(tagResult, resultString(result.Succeeded))

	w.outbox <- protocol.WorkerEvent{Op: protocol.SendMessageToClient, ClientID: clientID, Payload: b.render()}
}

func (w *Worker) processLogin(clientID int64, frame frameElement) {
	sn, _ := frame.get(tagDeviceSerial)
	token, _ := frame.get(tagToken)
	terminalType, _ := frame.get(tagTerminalType)
	productName, _ := frame.get(tagProductName)

	ctx, cancel := context.WithTimeout(context.Background(), webappTimeout)
	defer cancel()

	result, err := w.webapp.CheckLogin(ctx, webapp.LoginRequest{SN: sn, Token: token})
	if err != nil {
		w.logger.Warn("check_login call failed", zap.String("sn", sn), zap.Error(err))
		return
	}

	resultStr := resultOK
	if !result.Succeeded {
		resultStr = result.Reason
		if resultStr == "" {
			resultStr = resultFail
		}
	}

	b := &frameBuilder{}
	b.add(tagResponse, requestLogin)
	b.add(tagDeviceSerial, sn)
	b.add(tagResult, resultStr)

	w.outbox <- protocol.WorkerEvent{Op: protocol.SendMessageToClient, ClientID: clientID, Payload: b.render()}

	if result.Succeeded {
		w.loggedIn[clientID] = true
		w.outbox <- protocol.WorkerEvent{
			Op: protocol.AssignDeviceID, ClientID: clientID, DeviceID: sn,
			Attrs: map[string]string{"terminal_type": terminalType, "product_name": productName},
		}
	}
}

func (w *Worker) processLog(clientID int64, logType string, frame frameElement) {
	data := frame.asMap()

	ctx, cancel := context.WithTimeout(context.Background(), webappTimeout)
	defer cancel()

	succeeded, err := w.webapp.UploadLog(ctx, logType, data)
	if err != nil {
		w.logger.Warn("upload_log call failed", zap.String("type", logType), zap.Error(err))
		return
	}

	b := &frameBuilder{}
	b.add(tagResponse, logType)
	b.add(tagResult, resultString(succeeded))
	if transID, ok := data[tagTransID]; ok {
		b.add(tagTransID, transID)
	}

	w.outbox <- protocol.WorkerEvent{Op: protocol.SendMessageToClient, ClientID: clientID, Payload: b.render()}
}

func (w *Worker) processKeepAlive(clientID int64) {
	b := &frameBuilder{}
	b.add(tagResponse, eventKeepAlive)
	b.add(tagResult, resultOK)

	w.outbox <- protocol.WorkerEvent{Op: protocol.SendMessageToClient, ClientID: clientID, Payload: b.render()}
}

func resultString(succeeded bool) string {
	if succeeded {
		return resultOK
	}
	return resultFail
}
