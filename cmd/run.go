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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/loidl-consulting/linca-sdk-sub000/data"
	"github.com/loidl-consulting/linca-sdk-sub000/fhir"
	"github.com/loidl-consulting/linca-sdk-sub000/util"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var noProgress bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run SCENARIOS",
	Short: "Run a conformance scenario file",
	Long: `Reads a YAML scenario file, submits every document in order and
compares the server's reaction with the expectation recorded in the
scenario. A run statistic is printed afterwards.

Scenarios run strictly one after another because they share a single
session.

Example:

  lincactl run scenarios.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runScenarios,
}

func runScenarios(cmd *cobra.Command, args []string) error {
	scenarios, err := data.ReadScenarios(args[0])
	if err != nil {
		return err
	}
	if err := establishSession(); err != nil {
		return err
	}

	fmt.Printf("Conformance run %s against %s ...\n\n", uuid.New(), server)

	progress := mpb.New()
	var bar *mpb.Bar
	if !noProgress {
		bar = progress.AddBar(int64(len(scenarios)),
			mpb.BarRemoveOnComplete(),
			mpb.PrependDecorators(
				decor.Name("run "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	stats := util.RunStats{
		TotalScenarios: len(scenarios),
		Failures:       make(map[string]string),
	}
	baseDir := filepath.Dir(args[0])
	start := time.Now()
	for _, scenario := range scenarios {
		reason, duration, bytesOut := runScenario(scenario, baseDir)
		if duration > 0 {
			stats.RequestDurations = append(stats.RequestDurations, duration.Seconds())
		}
		stats.TotalBytesOut += bytesOut
		if reason == "" {
			stats.Passed++
		} else {
			stats.Failures[scenario.Name] = reason
		}
		if bar != nil {
			bar.Increment()
		}
	}
	progress.Wait()
	stats.TotalDuration = time.Since(start)

	fmt.Print(stats.String())
	if len(stats.Failures) > 0 {
		return fmt.Errorf("%d of %d scenarios failed", len(stats.Failures), stats.TotalScenarios)
	}
	return nil
}

func runScenario(scenario data.Scenario, baseDir string) (reason string, duration time.Duration, bytesOut int64) {
	document, err := os.ReadFile(filepath.Join(baseDir, scenario.File))
	if err != nil {
		return err.Error(), 0, 0
	}

	start := time.Now()
	outcome := fhir.CreateResource(session, fhir.RawResource{Kind: scenario.Resource, Json: document})
	return evaluate(scenario, outcome), time.Since(start), int64(len(document))
}

// evaluate compares the exchange outcome with the scenario's expectation and
// returns an empty string on a pass.
func evaluate(scenario data.Scenario, outcome fhir.ExchangeOutcome[fhir.RawResource]) string {
	if outcome.Protocol != nil {
		return fmt.Sprintf("the resource exchange broke down: %v", outcome.Protocol)
	}

	switch scenario.Expect.Status {
	case data.StatusCreated:
		if !outcome.Succeeded {
			return "expected the document to be created, but the server rejected it:\n" +
				util.FmtIssues(outcome.Issues)
		}
	case data.StatusRejected:
		if outcome.Succeeded {
			return "expected the server to reject the document, but it was created"
		}
		for _, code := range scenario.Expect.Issues {
			if !hasIssue(outcome.Issues, code) {
				return fmt.Sprintf("expected issue `%s` was not reported", code)
			}
		}
	}
	return ""
}

func hasIssue(issues []fhir.Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&noProgress, "no-progress", "", false, "don't show progress bar")
}
