// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import "errors"

var (
	// errDeviceOffline is returned to an application client whose target
	// connection id has no online session. The wording matches the original
	// implementation's wire-visible error string verbatim, since application
	// clients may match on it.
	errDeviceOffline = errors.New("Device is offline")

	// errTimedOut is returned when a device does not reply to a
	// SendAndReceive request within Options.CommandTimeout.
	errTimedOut = errors.New("Timed out")

	// errConnectionClosed is returned when a pending command's session is
	// torn down (device disconnect, duplicate login eviction) before the
	// device replies.
	errConnectionClosed = errors.New("Connection to the device was lost.")
)
