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

package fhir

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// smartConfigurationPath is the well-known path under which the server
// publishes the location of its token endpoint.
const smartConfigurationPath = ".well-known/smart-configuration"

// A CredentialProvider supplies the client certificate used for the mutual
// TLS handshake during session establishment. Returning a nil certificate
// without an error means that no credential is available, for example
// because the user cancelled the selection.
type CredentialProvider func() (*tls.Certificate, error)

// An Establisher creates authenticated sessions with one Linked Care FHIR
// server. It discovers the server's token endpoint over a certificate
// authenticated channel and exchanges the certificate for a bearer token.
type Establisher struct {
	baseURL     url.URL
	credentials CredentialProvider
	insecure    bool
}

// NewEstablisher creates a new Establisher for the given server base URL and
// credential provider. A trailing slash on the base URL is stripped.
func NewEstablisher(serverBaseUrl url.URL, credentials CredentialProvider) *Establisher {
	return newEstablisher(serverBaseUrl, credentials, false)
}

// NewEstablisherInsecure creates a new Establisher as NewEstablisher does
// but allows the development TLS fallback and disables certificate checks.
// Never use this against a production server.
func NewEstablisherInsecure(serverBaseUrl url.URL, credentials CredentialProvider) *Establisher {
	return newEstablisher(serverBaseUrl, credentials, true)
}

func newEstablisher(serverBaseUrl url.URL, credentials CredentialProvider, insecure bool) *Establisher {
	serverBaseUrl.Path = strings.TrimSuffix(serverBaseUrl.Path, "/")
	return &Establisher{
		baseURL:     serverBaseUrl,
		credentials: credentials,
		insecure:    insecure,
	}
}

// Establish opens a mutually authenticated channel to the server, discovers
// the token endpoint through the SMART configuration document and fetches a
// bearer token from it.
//
// Establish always returns a Session and never an error. Whether it worked
// shows only in Session.Established: a missing credential, an unreachable
// server or an unusable response all degrade to an unestablished session.
// Without a credential no network call is made at all.
func (e *Establisher) Establish() *Session {
	session := &Session{baseURL: e.baseURL, establisher: e}

	if e.credentials == nil {
		return session
	}
	certificate, err := e.credentials()
	if err != nil || certificate == nil {
		return session
	}

	client := e.newMutualTLSClient(*certificate)
	defer client.CloseIdleConnections()

	tokenEndpoint, err := discoverTokenEndpoint(client, e.baseURL)
	if err != nil {
		return session
	}
	token, err := fetchToken(client, tokenEndpoint)
	if err != nil {
		return session
	}

	session.token = token
	return session
}

// Reauthenticate swaps the session's bearer token by running the establisher
// again against the same base URL. On failure the previous token stays in
// place, so callers keep a stale token over no token at all. Nothing besides
// the token ever changes.
func (s *Session) Reauthenticate() {
	if s.establisher == nil {
		return
	}
	if fresh := s.establisher.Establish(); fresh.Established() {
		s.token = fresh.token
	}
}

func (e *Establisher) newMutualTLSClient(certificate tls.Certificate) *http.Client {
	tlsConfig := tlsClientConfig(e.insecure)
	tlsConfig.Certificates = []tls.Certificate{certificate}
	return newHTTPClient(tlsConfig)
}

// discoverTokenEndpoint reads the SMART configuration document and returns
// the token endpoint announced in it.
func discoverTokenEndpoint(client *http.Client, baseURL url.URL) (string, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL.JoinPath(smartConfigurationPath).String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Add("Accept", fhirJson)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-OK status while reading the SMART configuration: %s", resp.Status)
	}

	var smartConfiguration struct {
		TokenEndpoint string `json:"token_endpoint"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&smartConfiguration); err != nil {
		return "", fmt.Errorf("error while parsing the SMART configuration: %w", err)
	}
	if smartConfiguration.TokenEndpoint == "" {
		return "", errors.New("the SMART configuration carries no token endpoint")
	}
	return smartConfiguration.TokenEndpoint, nil
}

// fetchToken obtains a bearer token from the token endpoint. The response
// body is the live token, verbatim.
func fetchToken(client *http.Client, tokenEndpoint string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, tokenEndpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Add("Accept", "text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-OK status while fetching a token: %s", resp.Status)
	}

	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(token) == 0 {
		return "", errors.New("the token endpoint returned an empty token")
	}
	return string(token), nil
}
