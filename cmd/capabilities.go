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

	"github.com/loidl-consulting/linca-sdk-sub000/fhir"
	"github.com/spf13/cobra"
)

// capabilitiesCmd represents the capabilities command
var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Negotiate the server's capabilities",
	Long: `Establishes an authenticated session and asks the server which
protocol version and how many resource kinds it supports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := establishSession(); err != nil {
			return err
		}

		outcome, descriptor := fhir.Negotiate(session)
		if outcome == fhir.NegotiationUnauthorized {
			// the token may have aged out between the two calls
			session.Reauthenticate()
			outcome, descriptor = fhir.Negotiate(session)
		}
		if outcome != fhir.NegotiationSucceeded {
			return fmt.Errorf("capability negotiation with %s %s", server, outcome)
		}

		fmt.Printf("Software       : %s\n", descriptor.Software)
		if descriptor.Description != "" {
			fmt.Printf("Description    : %s\n", descriptor.Description)
		}
		fmt.Printf("FHIR Version   : %s\n", descriptor.FhirVersion)
		fmt.Printf("Statement Date : %s\n", descriptor.Date)
		fmt.Printf("Resource Kinds : %d\n", descriptor.ResourceKinds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}
