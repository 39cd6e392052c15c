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
	"crypto/tls"
	"fmt"
	"net/url"
	"os"

	"github.com/loidl-consulting/linca-sdk-sub000/fhir"
	"github.com/spf13/cobra"
)

var server string
var clientCertificate string
var clientKey string
var disableTlsSecurity bool

var session *fhir.Session

func establishSession() error {
	fhirServerBaseUrl, err := url.ParseRequestURI(server)
	if err != nil {
		return fmt.Errorf("could not parse server's base URL: %v", err)
	}

	credentials := fileCredentials(clientCertificate, clientKey)

	var establisher *fhir.Establisher
	if disableTlsSecurity {
		establisher = fhir.NewEstablisherInsecure(*fhirServerBaseUrl, credentials)
	} else {
		establisher = fhir.NewEstablisher(*fhirServerBaseUrl, credentials)
	}

	session = establisher.Establish()
	if !session.Established() {
		return fmt.Errorf("could not establish an authenticated session with %s", server)
	}
	return nil
}

// fileCredentials builds a credential provider reading a PEM encoded
// certificate and key pair. An empty certificate path means no credential is
// available at all.
func fileCredentials(certificateFile, keyFile string) fhir.CredentialProvider {
	if certificateFile == "" {
		return nil
	}
	return func() (*tls.Certificate, error) {
		certificate, err := tls.LoadX509KeyPair(certificateFile, keyFile)
		if err != nil {
			return nil, err
		}
		return &certificate, nil
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lincactl",
	Short: "Exercise a Linked Care FHIR® Server from the Command Line",
	Long: `lincactl connects to a Linked Care FHIR® server with a client
certificate, negotiates the server's capabilities and submits medication
resources to check how the server reacts.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if server == "" {
			return nil
		}
		if _, err := url.ParseRequestURI(server); err != nil {
			return fmt.Errorf("could not parse server's base URL: %v", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "base URL of the Linked Care FHIR server")
	rootCmd.PersistentFlags().StringVar(&clientCertificate, "client-certificate", "", "path to the PEM encoded client certificate")
	rootCmd.PersistentFlags().StringVar(&clientKey, "client-key", "", "path to the PEM encoded private key of the client certificate")
	rootCmd.PersistentFlags().BoolVarP(&disableTlsSecurity, "insecure", "k", false, "allow the development TLS fallback and skip server certificate checks")
}
