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
	"encoding/json"
	"io"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// NegotiationOutcome is the result of one capability negotiation attempt.
type NegotiationOutcome int

const (
	// NegotiationSucceeded means the server answered with a parseable
	// capability statement.
	NegotiationSucceeded NegotiationOutcome = iota
	// NegotiationNotConnected means the session was not established, so no
	// network call was made.
	NegotiationNotConnected
	// NegotiationUnauthorized means the server did not accept the session's
	// bearer token.
	NegotiationUnauthorized
	// NegotiationCouldNotParse means the server answered, but not with a
	// capability statement.
	NegotiationCouldNotParse
	// NegotiationFailed means the request did not complete at all.
	NegotiationFailed
)

func (outcome NegotiationOutcome) String() string {
	switch outcome {
	case NegotiationSucceeded:
		return "succeeded"
	case NegotiationNotConnected:
		return "not connected"
	case NegotiationUnauthorized:
		return "unauthorized"
	case NegotiationCouldNotParse:
		return "could not parse the capability statement"
	default:
		return "failed"
	}
}

// A CapabilityDescriptor summarizes the capability statement of a server. It
// is built fresh on every successful negotiation and never mutated.
type CapabilityDescriptor struct {
	Software      string
	Description   string
	FhirVersion   string
	Date          string
	ResourceKinds int
}

// Negotiate probes the server's capabilities with the given session. It is a
// single-shot probe without retries; after a reauthentication callers
// negotiate again explicitly.
//
// An unestablished session short-circuits to NegotiationNotConnected without
// any network access. The descriptor is non-nil exactly when the outcome is
// NegotiationSucceeded.
func Negotiate(session *Session) (NegotiationOutcome, *CapabilityDescriptor) {
	if !session.Established() {
		return NegotiationNotConnected, nil
	}

	req, err := session.NewCapabilitiesRequest()
	if err != nil {
		return NegotiationFailed, nil
	}
	resp, err := session.Do(req)
	if err != nil {
		return NegotiationFailed, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NegotiationUnauthorized, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NegotiationFailed, nil
	}
	var statement fm.CapabilityStatement
	if err := json.Unmarshal(body, &statement); err != nil {
		return NegotiationCouldNotParse, nil
	}
	return NegotiationSucceeded, newCapabilityDescriptor(statement)
}

func newCapabilityDescriptor(statement fm.CapabilityStatement) *CapabilityDescriptor {
	descriptor := &CapabilityDescriptor{
		FhirVersion: statement.FhirVersion.Code(),
		Date:        statement.Date,
	}
	if statement.Software != nil {
		descriptor.Software = statement.Software.Name
	} else if statement.Name != nil {
		descriptor.Software = *statement.Name
	}
	if statement.Description != nil {
		descriptor.Description = *statement.Description
	}
	for _, rest := range statement.Rest {
		descriptor.ResourceKinds += len(rest.Resource)
	}
	return descriptor
}
