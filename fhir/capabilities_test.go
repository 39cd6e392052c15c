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
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

const capabilityStatementJson = `{
  "resourceType": "CapabilityStatement",
  "status": "active",
  "date": "2026-05-12",
  "kind": "instance",
  "software": {"name": "LINCA FHIR Server"},
  "description": "Linked Care medication server",
  "fhirVersion": "4.0.1",
  "format": ["application/fhir+json"],
  "rest": [{
    "mode": "server",
    "resource": [{"type": "Patient"}, {"type": "MedicationRequest"}, {"type": "MedicationDispense"}]
  }]
}`

func TestNegotiateNotConnected(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		requests++
	}))
	defer server.Close()
	baseURL, _ := url.ParseRequestURI(server.URL)

	outcome, descriptor := Negotiate(&Session{baseURL: *baseURL})

	assert.Equal(t, NegotiationNotConnected, outcome)
	assert.Nil(t, descriptor)
	assert.Equal(t, 0, requests, "expected no network call on an unestablished session")
}

func TestNegotiate(t *testing.T) {
	t.Run("Succeeded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			assert.Equal(t, http.MethodOptions, req.Method)
			assert.Equal(t, "Bearer token-120033", req.Header.Get("Authorization"))
			fmt.Fprint(res, capabilityStatementJson)
		}))
		defer server.Close()
		baseURL, _ := url.ParseRequestURI(server.URL)

		outcome, descriptor := Negotiate(&Session{token: "token-120033", baseURL: *baseURL})

		assert.Equal(t, NegotiationSucceeded, outcome)
		if assert.NotNil(t, descriptor) {
			assert.Equal(t, "LINCA FHIR Server", descriptor.Software)
			assert.Equal(t, "Linked Care medication server", descriptor.Description)
			assert.Equal(t, "4.0.1", descriptor.FhirVersion)
			assert.Equal(t, "2026-05-12", descriptor.Date)
			assert.Equal(t, 3, descriptor.ResourceKinds)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			res.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()
		baseURL, _ := url.ParseRequestURI(server.URL)

		outcome, descriptor := Negotiate(&Session{token: "token-120205", baseURL: *baseURL})

		assert.Equal(t, NegotiationUnauthorized, outcome)
		assert.Nil(t, descriptor)
	})

	t.Run("CouldNotParse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			fmt.Fprint(res, "no-json")
		}))
		defer server.Close()
		baseURL, _ := url.ParseRequestURI(server.URL)

		outcome, descriptor := Negotiate(&Session{token: "token-120318", baseURL: *baseURL})

		assert.Equal(t, NegotiationCouldNotParse, outcome)
		assert.Nil(t, descriptor)
	})

	t.Run("Failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {}))
		baseURL, _ := url.ParseRequestURI(server.URL)
		server.Close()

		outcome, descriptor := Negotiate(&Session{token: "token-120456", baseURL: *baseURL})

		assert.Equal(t, NegotiationFailed, outcome)
		assert.Nil(t, descriptor)
	})
}

// TestNegotiateAfterReauthentication plays the expired-token round trip:
// negotiation fails with an expired token, the caller reauthenticates and
// negotiates again.
func TestNegotiateAfterReauthentication(t *testing.T) {
	var server *tokenServer
	server = newTokenServer(func(res http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer "+server.currentToken() {
			res.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(res, capabilityStatementJson)
	})
	defer server.Close()

	session := server.establisher(t).Establish()
	assert.True(t, session.Established())

	// the server rotates its live token, expiring the session's one
	server.issued++

	outcome, _ := Negotiate(session)
	assert.Equal(t, NegotiationUnauthorized, outcome)

	session.Reauthenticate()

	outcome, descriptor := Negotiate(session)
	assert.Equal(t, NegotiationSucceeded, outcome)
	assert.NotNil(t, descriptor)
}
