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

package cmd

import (
	"errors"
	"testing"

	"github.com/loidl-consulting/linca-sdk-sub000/data"
	"github.com/loidl-consulting/linca-sdk-sub000/fhir"
	"github.com/stretchr/testify/assert"
)

func createdScenario() data.Scenario {
	return data.Scenario{
		Name:     "create-patient",
		Resource: "Patient",
		File:     "patient.json",
		Expect:   data.Expectation{Status: data.StatusCreated},
	}
}

func rejectedScenario(issues ...string) data.Scenario {
	return data.Scenario{
		Name:     "reject-patient",
		Resource: "Patient",
		File:     "patient.json",
		Expect:   data.Expectation{Status: data.StatusRejected, Issues: issues},
	}
}

func TestEvaluate(t *testing.T) {
	created := fhir.ExchangeOutcome[fhir.RawResource]{Succeeded: true}
	rejected := fhir.ExchangeOutcome[fhir.RawResource]{
		Issues: []fhir.Issue{{Code: "required", Text: "Name.text missing"}},
	}

	t.Run("ExpectedCreation", func(t *testing.T) {
		assert.Empty(t, evaluate(createdScenario(), created))
	})

	t.Run("UnexpectedRejection", func(t *testing.T) {
		assert.Contains(t, evaluate(createdScenario(), rejected), "expected the document to be created")
	})

	t.Run("ExpectedRejection", func(t *testing.T) {
		assert.Empty(t, evaluate(rejectedScenario("required"), rejected))
	})

	t.Run("UnexpectedCreation", func(t *testing.T) {
		assert.Contains(t, evaluate(rejectedScenario(), created), "expected the server to reject")
	})

	t.Run("MissingIssue", func(t *testing.T) {
		assert.Contains(t, evaluate(rejectedScenario("value"), rejected), "expected issue `value`")
	})

	t.Run("ProtocolError", func(t *testing.T) {
		broken := fhir.ExchangeOutcome[fhir.RawResource]{Protocol: errors.New("no Location header")}
		assert.Contains(t, evaluate(createdScenario(), broken), "broke down")
	})
}

func TestHasIssue(t *testing.T) {
	issues := []fhir.Issue{{Code: "required"}, {Code: "value"}}
	assert.True(t, hasIssue(issues, "required"))
	assert.False(t, hasIssue(issues, "invariant"))
}
