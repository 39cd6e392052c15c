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
	"strings"
	"text/template"

	"github.com/loidl-consulting/linca-sdk-sub000/fhir"
)

// ErrorResponse represents an error returned from the Linked Care server.
type ErrorResponse struct {
	StatusCode int
	Issues     []fhir.Issue
	OtherError string
}

// String returns the ErrorResponse in a default formatted way.
func (errRes *ErrorResponse) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("StatusCode  : %d\n", errRes.StatusCode))
	if len(errRes.Issues) > 0 {
		builder.WriteString(FmtIssues(errRes.Issues))
	}
	if len(errRes.OtherError) > 0 {
		builder.WriteString(fmt.Sprintf("Error       : %s\n", IndentExceptFirstLine(14, errRes.OtherError)))
	}
	return builder.String()
}

var issueTemplate, _ = template.New("issues").
	Parse(`{{ define "issue" -}}
Code        : {{ .Code }}
{{ with .Severity -}}
Severity    : {{ . }}
{{ end -}}
{{ with .Text -}}
Details     : {{ . }}
{{ end -}}
{{ end -}}

{{ range $index, $issue := . -}}
{{ if $index }}---
{{ end -}}
{{ template "issue" $issue -}}
{{ end -}}
`)

// FmtIssues renders the validation issues of a rejected submission.
func FmtIssues(issues []fhir.Issue) string {
	builder := strings.Builder{}

	err := issueTemplate.Execute(&builder, issues)
	if err != nil {
		return err.Error()
	}

	return builder.String()
}

func Indent(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + IndentExceptFirstLine(spaces, v)
}

func IndentExceptFirstLine(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return strings.ReplaceAll(v, "\n", "\n"+pad)
}
