// Copyright 2024 - 2026 Loidl Consulting & IT Services GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fhir implements the client side of the Linked Care resource
// exchange: establishing a mutually authenticated session, negotiating the
// server's capabilities and creating resources on the server.
package fhir

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const fhirJson = "application/fhir+json"

// requestTimeout bounds every network round trip of this package. A timed
// out call surfaces like any other transport failure.
const requestTimeout = 30 * time.Second

// A Session is the authenticated handle to a Linked Care FHIR server. It
// combines the server's base URL with the bearer token obtained during
// establishment. The base URL never changes after establishment; the token
// changes only through Reauthenticate.
//
// A Session must not be shared across goroutines. Callers that need
// parallelism establish one Session per actor.
type Session struct {
	token       string
	baseURL     url.URL
	establisher *Establisher
}

// Established reports whether the session carries a bearer token. A session
// that is not established must not be used for any server interaction.
func (s *Session) Established() bool {
	return len(s.token) != 0
}

// BaseURL returns the base URL of the server this session talks to.
func (s *Session) BaseURL() url.URL {
	return s.baseURL
}

// NewCapabilitiesRequest creates a new capability probe request against the
// server root. Sets the JSON Accept header. Otherwise it's identical to
// http.NewRequest.
func (s *Session) NewCapabilitiesRequest() (*http.Request, error) {
	req, err := http.NewRequest(http.MethodOptions, s.baseURL.JoinPath("").String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", fhirJson)
	return req, nil
}

// NewCreateRequest creates a new create interaction request against the
// collection endpoint of the given resource type. Sets JSON Accept and
// Content-Type headers.
func (s *Session) NewCreateRequest(resourceType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPost, s.baseURL.JoinPath(resourceType).String(), body)
	if err != nil {
		return nil, fmt.Errorf("error while creating a create request: %w", err)
	}
	req.Header.Add("Accept", fhirJson)
	req.Header.Add("Content-Type", fhirJson)
	return req, nil
}

// NewFetchRequest creates a new read request for the given location. The
// location may be absolute or server-relative, as servers differ in what
// they put into the Location header.
func (s *Session) NewFetchRequest(location string) (*http.Request, error) {
	locationURL, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("error while parsing the location `%s`: %w", location, err)
	}
	req, err := http.NewRequest(http.MethodGet, s.baseURL.ResolveReference(locationURL).String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", fhirJson)
	return req, nil
}

// Do sends the request with the session's bearer token. The transport handle
// lives only for the duration of this call, so the response body is drained
// into memory before the handle is released. Callers still have to close the
// returned body.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if !s.Established() {
		return nil, fmt.Errorf("the session with %s is not established", s.baseURL.String())
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	client := s.newTransportClient()
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// newTransportClient mints a fresh HTTP client for a single call.
func (s *Session) newTransportClient() *http.Client {
	insecure := s.establisher != nil && s.establisher.insecure
	return newHTTPClient(tlsClientConfig(insecure))
}

func newHTTPClient(tlsConfig *tls.Config) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = tlsConfig
	return &http.Client{Transport: t, Timeout: requestTimeout}
}

// tlsClientConfig returns the transport security configuration. Production
// sessions require TLS 1.3. The insecure variant lowers the floor by one
// version and skips certificate checks for development servers.
func tlsClientConfig(insecure bool) *tls.Config {
	if insecure {
		return &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: true}
	}
	return &tls.Config{MinVersion: tls.VersionTLS13}
}
