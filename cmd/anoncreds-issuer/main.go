/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package main is the anoncreds-issuer command line tool. It creates schemas, credential
// definitions, offers, credentials and revocation registries against a LevelDB backed wallet.
package main

import (
	"os"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-anoncreds-go/cmd/anoncreds-issuer/startcmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use: "anoncreds-issuer",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	logger := log.New("aries-framework/anoncreds/issuer")

	rootCmd.AddCommand(startcmd.Cmds(os.Stdout)...)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Failed to run anoncreds-issuer: %s", err)
	}
}
