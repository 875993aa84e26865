// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xmetrics provides configurability for Prometheus-based metrics.  The more general go-kit interfaces
are used where possible.

Deprecated: xmetrics is no longer planned to be used by future WebPA/XMiDT services.

This package is frozen and no new functionality will be added.
*/
package xmetrics
