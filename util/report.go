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

package util

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RunStats aggregates the results of one conformance run.
type RunStats struct {
	TotalScenarios   int
	Passed           int
	RequestDurations []float64
	TotalBytesOut    int64
	TotalDuration    time.Duration
	Failures         map[string]string
}

func (rs *RunStats) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Scenarios	[total]			%d\n", rs.TotalScenarios))

	var ratio float32
	if rs.TotalScenarios > 0 {
		ratio = float32(rs.Passed) / float32(rs.TotalScenarios) * 100
	}
	builder.WriteString(fmt.Sprintf("Passed		[total, ratio]		%d, %.2f %%\n", rs.Passed, ratio))

	builder.WriteString(fmt.Sprintf("Duration	[total]			%s\n", FmtDurationHumanReadable(rs.TotalDuration)))

	if len(rs.RequestDurations) > 0 {
		p := CalculateDurationStatistics(rs.RequestDurations)
		builder.WriteString(fmt.Sprintf("Requ. Latencies	[mean, 50, 95, 99, max]	%s, %s, %s, %s, %s\n", p.Mean, p.Q50, p.Q95, p.Q99, p.Max))

		builder.WriteString(fmt.Sprintf("Bytes Out	[total, mean]		%s, %s\n",
			FmtBytesHumanReadable(float32(rs.TotalBytesOut)),
			FmtBytesHumanReadable(float32(rs.TotalBytesOut)/float32(len(rs.RequestDurations)))))
	}

	if len(rs.Failures) > 0 {
		builder.WriteString("\nFailed Scenarios:\n")

		names := make([]string, 0, len(rs.Failures))
		for name := range rs.Failures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			builder.WriteString(name + "\n")
			builder.WriteString(Indent(2, rs.Failures[name]) + "\n")
		}
	}

	return builder.String()
}
