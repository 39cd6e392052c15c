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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// A Resource is a document that knows the name of the server-side collection
// it belongs to. JSON serialization follows the usual marshalling rules.
type Resource interface {
	ResourceType() string
}

// An Issue is one structured validation complaint returned by the server for
// a rejected submission.
type Issue struct {
	Code     string
	Text     string
	Severity string
}

// An ExchangeOutcome is the result of one create interaction. Exactly one of
// Document and Issues is populated, discriminated by Succeeded. A rejected
// submission may carry an empty issue list if the server gave no detail;
// Succeeded stays the authoritative signal.
//
// Protocol is non-nil when the exchange broke down outside the server's
// validation, for example when a successful create carried no location or
// the canonical copy did not parse. Such outcomes never carry issues.
type ExchangeOutcome[T Resource] struct {
	Succeeded bool
	Document  T
	Issues    []Issue
	Protocol  error
}

// CreateResource submits the document to the server and, on acceptance,
// fetches the canonical copy the server created from it. The server is the
// authority on the final field values, so the returned document is always
// the fetched one, never the submitted one.
//
// A submission answered with 401 triggers one reauthentication and one
// retry. Validation rejections are never retried; resubmitting an invalid
// document fails identically. The interaction is not idempotent: submitting
// the same document twice creates two distinct resources.
func CreateResource[T Resource](session *Session, document T) ExchangeOutcome[T] {
	var outcome ExchangeOutcome[T]

	body, err := json.Marshal(document)
	if err != nil {
		outcome.Protocol = fmt.Errorf("error while serializing the %s document: %w", document.ResourceType(), err)
		return outcome
	}

	resp, err := submit(session, document.ResourceType(), body)
	if err != nil {
		outcome.Protocol = err
		return outcome
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		session.Reauthenticate()
		resp, err = submit(session, document.ResourceType(), body)
		if err != nil {
			outcome.Protocol = err
			return outcome
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return fetchCanonical[T](session, resp.Header.Get("Location"))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		outcome.Issues = readIssues(resp.Body)
		return outcome
	default:
		outcome.Protocol = fmt.Errorf("unexpected status while creating a %s: %s", document.ResourceType(), resp.Status)
		return outcome
	}
}

func submit(session *Session, resourceType string, document []byte) (*http.Response, error) {
	req, err := session.NewCreateRequest(resourceType, bytes.NewReader(document))
	if err != nil {
		return nil, err
	}
	return session.Do(req)
}

// fetchCanonical follows the location of a successful create and parses the
// body as the declared document type.
func fetchCanonical[T Resource](session *Session, location string) ExchangeOutcome[T] {
	var outcome ExchangeOutcome[T]

	if location == "" {
		outcome.Protocol = errors.New("the create response carries no Location header")
		return outcome
	}
	req, err := session.NewFetchRequest(location)
	if err != nil {
		outcome.Protocol = err
		return outcome
	}
	resp, err := session.Do(req)
	if err != nil {
		outcome.Protocol = err
		return outcome
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		outcome.Protocol = fmt.Errorf("non-OK status while fetching the canonical copy from %s: %s", location, resp.Status)
		return outcome
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome.Protocol = err
		return outcome
	}
	if err := json.Unmarshal(body, &outcome.Document); err != nil {
		outcome.Protocol = fmt.Errorf("error while parsing the canonical copy from %s: %w", location, err)
		return outcome
	}
	outcome.Succeeded = true
	return outcome
}

// readIssues parses the operation outcome of a rejected submission. A body
// that is no operation outcome yields an empty issue list; the rejection
// itself stands either way.
func readIssues(r io.Reader) []Issue {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	operationOutcome, err := fm.UnmarshalOperationOutcome(body)
	if err != nil {
		return nil
	}

	issues := make([]Issue, 0, len(operationOutcome.Issue))
	for _, issue := range operationOutcome.Issue {
		issues = append(issues, Issue{
			Code:     issue.Code.Code(),
			Text:     issueText(issue),
			Severity: issue.Severity.Code(),
		})
	}
	return issues
}

func issueText(issue fm.OperationOutcomeIssue) string {
	if details := issue.Details; details != nil {
		if details.Text != nil {
			return *details.Text
		}
		for _, coding := range details.Coding {
			if coding.Code != nil {
				return *coding.Code
			}
		}
	}
	if issue.Diagnostics != nil {
		return *issue.Diagnostics
	}
	return ""
}
