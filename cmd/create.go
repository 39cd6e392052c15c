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
	"encoding/json"
	"fmt"
	"os"

	"github.com/loidl-consulting/linca-sdk-sub000/fhir"
	"github.com/loidl-consulting/linca-sdk-sub000/util"
	"github.com/spf13/cobra"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create KIND FILE",
	Short: "Create a single resource on the server",
	Long: `Submits the document inside FILE to the KIND collection of the
server and fetches the canonical copy the server created from it.

Example:

  lincactl create Patient samples/patient.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := establishSession(); err != nil {
			return err
		}

		document, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		outcome := fhir.CreateResource(session, fhir.RawResource{Kind: args[0], Json: document})
		if outcome.Succeeded {
			fmt.Printf("Created %s/%s\n", args[0], resourceId(outcome.Document.Json))
			return nil
		}
		if outcome.Protocol != nil {
			return fmt.Errorf("the resource exchange broke down: %v", outcome.Protocol)
		}

		fmt.Println("The server rejected the document:")
		fmt.Print(util.Indent(2, util.FmtIssues(outcome.Issues)))
		return fmt.Errorf("the %s document was rejected", args[0])
	},
}

// resourceId extracts the server-assigned identifier of a canonical copy.
func resourceId(document []byte) string {
	var resource struct {
		Id string `json:"id"`
	}
	if err := json.Unmarshal(document, &resource); err != nil {
		return "?"
	}
	return resource.Id
}

func init() {
	rootCmd.AddCommand(createCmd)
}
