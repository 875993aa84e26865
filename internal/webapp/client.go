// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package webapp is the HTTP client a worker uses to talk to the external
// web application that owns device registration, login, and log storage.
// It is deliberately thin: the broker core treats the web application as an
// external collaborator (spec.md §1), so this package only encodes the three
// request shapes and decodes the two response shapes it needs.
package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xmidt-org/devicebroker/xhttp"
)

// DefaultTimeout bounds every outbound call a worker makes to the web
// application, so a slow or wedged backend can't stall a worker goroutine
// indefinitely.
const DefaultTimeout = 15 * time.Second

// DefaultRetries is how many times a check_registration/check_login/upload_log
// call is retried when the web application answers with a transient status
// (429/408/504) or the transport reports a temporary error.
const DefaultRetries = 2

// Client performs the three HTTP calls described in spec.md §6.
type Client struct {
	BaseURL string
	HTTP    xhttp.Client
}

// transactorClient adapts a bare transactor function to the xhttp.Client
// interface, letting Do be wrapped in decorators like xhttp.RetryTransactor
// without requiring a full http.RoundTripper.
type transactorClient func(*http.Request) (*http.Response, error)

func (t transactorClient) Do(r *http.Request) (*http.Response, error) { return t(r) }

// NewClient builds a Client whose HTTP.Do retries transient web application
// failures, the same way worker.go's predecessor retried registration and
// login calls against a flaky backend.
func NewClient(baseURL string) *Client {
	base := &http.Client{Timeout: DefaultTimeout}
	retrying := xhttp.RetryTransactor(xhttp.RetryOptions{
		Retries:           DefaultRetries,
		ShouldRetry:       xhttp.ShouldRetry,
		ShouldRetryStatus: xhttp.RetryCodes,
	}, base.Do)

	return &Client{
		BaseURL: baseURL,
		HTTP:    transactorClient(retrying),
	}
}

// RegistrationRequest is the JSON body posted to /device/check_registration.
type RegistrationRequest struct {
	SN           string `json:"sn"`
	TerminalType string `json:"terminal_type"`
	ProductName  string `json:"product_name"`
	CloudID      string `json:"cloud_id"`
}

// RegistrationResult reports whether registration succeeded and, if so, the
// token the device should present on Login.
type RegistrationResult struct {
	Succeeded bool
	Token     string
}

// CheckRegistration posts a registration request and succeeds only on HTTP
// 200 with a non-empty "token" field in the response body. The body is
// decoded only on the 200 branch, matching worker.py's check_registration:
// an error page returned on a non-200 status is never parsed as JSON, so a
// malformed or non-JSON failure body still resolves as a plain failure
// instead of a decode error.
func (c *Client) CheckRegistration(ctx context.Context, req RegistrationRequest) (RegistrationResult, error) {
	status, raw, err := c.postJSON(ctx, "/device/check_registration", req)
	if err != nil {
		return RegistrationResult{}, err
	}

	if status != http.StatusOK {
		return RegistrationResult{}, nil
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := decodeBody(raw, &body); err != nil {
		return RegistrationResult{}, err
	}

	if body.Token != "" {
		return RegistrationResult{Succeeded: true, Token: body.Token}, nil
	}

	return RegistrationResult{}, nil
}

// LoginRequest is the JSON body posted to /device/check_login.
type LoginRequest struct {
	SN    string `json:"sn"`
	Token string `json:"token"`
}

// LoginResult reports whether login succeeded and, on failure, the reason
// string the web application supplied (if any).
type LoginResult struct {
	Succeeded bool
	Reason    string
}

// CheckLogin posts a login request. HTTP 200 is success; any other status
// yields the "reason" field from the JSON body, if present. The body is
// decoded only on the non-200 branch, matching worker.py's check_login.
func (c *Client) CheckLogin(ctx context.Context, req LoginRequest) (LoginResult, error) {
	status, raw, err := c.postJSON(ctx, "/device/check_login", req)
	if err != nil {
		return LoginResult{}, err
	}

	if status == http.StatusOK {
		return LoginResult{Succeeded: true}, nil
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(raw, &body); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Succeeded: false, Reason: body.Reason}, nil
}

// UploadLog posts a flattened event body to /device/upload_log?type={eventType}.
// It returns true only on HTTP 200.
func (c *Client) UploadLog(ctx context.Context, eventType string, data map[string]string) (bool, error) {
	url := fmt.Sprintf("%s/device/upload_log?type=%s", c.BaseURL, eventType)
	status, _, err := c.doPost(ctx, url, data)
	if err != nil {
		return false, err
	}

	return status == http.StatusOK, nil
}

func (c *Client) postJSON(ctx context.Context, path string, reqBody any) (int, []byte, error) {
	return c.doPost(ctx, c.BaseURL+path, reqBody)
}

// doPost issues the request and returns the status and raw response body
// unparsed; callers decode it only on the status branch that calls for it,
// since check_registration and check_login each expect JSON on opposite
// branches.
func (c *Client) doPost(ctx context.Context, url string, reqBody any) (int, []byte, error) {
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return 0, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return httpResp.StatusCode, raw, nil
}

// decodeBody JSON-decodes a response body captured by doPost. An empty body
// is tolerated, since check_login's success path has no body to decode.
func decodeBody(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
