package data

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Expectation states for a scenario are spelled the way they appear in the
// scenario files.
const (
	StatusCreated  = "created"
	StatusRejected = "rejected"
)

// An Expectation is the server reaction a scenario demands: either the
// document gets created, or it gets rejected, optionally with a set of issue
// codes that have to show up in the rejection.
type Expectation struct {
	Status string   `yaml:"status"`
	Issues []string `yaml:"issues"`
}

// A Scenario is one conformance probe: a document on disk plus the reaction
// the server has to show on its submission. File paths are relative to the
// scenario file.
type Scenario struct {
	Name     string      `yaml:"name"`
	Resource string      `yaml:"resource"`
	File     string      `yaml:"file"`
	Expect   Expectation `yaml:"expect"`
}

var knownKinds = map[string]bool{
	Patient{}.ResourceType():            true,
	MedicationRequest{}.ResourceType():  true,
	MedicationDispense{}.ResourceType(): true,
	RequestGroup{}.ResourceType():       true,
}

// ReadScenarios reads a YAML scenario file and validates every entry.
func ReadScenarios(filename string) ([]Scenario, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var scenarios []Scenario
	if err := yaml.Unmarshal(raw, &scenarios); err != nil {
		return nil, fmt.Errorf("could not parse the scenario file %s: %v", filename, err)
	}
	for i, scenario := range scenarios {
		if err := scenario.validate(); err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %v", i+1, scenario.Name, err)
		}
	}
	return scenarios, nil
}

func (s Scenario) validate() error {
	if s.Name == "" {
		return errors.New("missing name")
	}
	if !knownKinds[s.Resource] {
		return fmt.Errorf("unknown resource kind `%s`", s.Resource)
	}
	if s.File == "" {
		return errors.New("missing document file")
	}
	switch s.Expect.Status {
	case StatusCreated, StatusRejected:
		return nil
	default:
		return fmt.Errorf("unknown expectation `%s`", s.Expect.Status)
	}
}
