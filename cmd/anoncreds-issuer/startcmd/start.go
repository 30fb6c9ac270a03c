/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine/memengine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/issuer"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/tails"
)

const (
	// db path flag.
	dbPathFlagName  = "db-path"
	dbPathEnvKey    = "ANONCREDS_DB_PATH"
	dbPathFlagUsage = "Directory of the issuer wallet database." +
		" Alternatively, this can be set with the following environment variable: " + dbPathEnvKey

	// db timeout flag.
	dbTimeoutFlagName  = "db-timeout"
	dbTimeoutEnvKey    = "ANONCREDS_DB_TIMEOUT"
	dbTimeoutDefault   = "5"
	dbTimeoutFlagUsage = "Total time in seconds to wait until the wallet database is available before giving up." +
		" Default: " + dbTimeoutDefault + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + dbTimeoutEnvKey

	// tails dir flag.
	tailsDirFlagName  = "tails-dir"
	tailsDirEnvKey    = "ANONCREDS_TAILS_DIR"
	tailsDirFlagUsage = "Directory tails files are written to and read from." +
		" Alternatively, this can be set with the following environment variable: " + tailsDirEnvKey

	// wallet flag.
	walletFlagName  = "wallet"
	walletEnvKey    = "ANONCREDS_WALLET"
	walletDefault   = "default"
	walletFlagUsage = "Name of the issuer wallet. Defaults to " + walletDefault + " if not set." +
		" Alternatively, this can be set with the following environment variable: " + walletEnvKey

	// log level flag.
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "ANONCREDS_LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	didFlagName            = "did"
	nameFlagName           = "name"
	versionFlagName        = "version"
	attrsFlagName          = "attrs"
	schemaFlagName         = "schema"
	tagFlagName            = "tag"
	supportRevocationFlag  = "support-revocation"
	credDefIDFlagName      = "cred-def-id"
	offerFlagName          = "offer"
	requestFlagName        = "request"
	valuesFlagName         = "values"
	revRegIDFlagName       = "rev-reg-id"
	credRevIDFlagName      = "cred-rev-id"
	maxCredNumFlagName     = "max-cred-num"
	issuanceTypeFlagName   = "issuance-type"
	uriPatternFlagName     = "uri-pattern"
	documentFlagUsageAtRef = " Either inline JSON or @path to a file holding it."
)

var logger = log.New("aries-framework/anoncreds/issuer-cmd")

// Cmds returns the issuer commands writing their results to out.
func Cmds(out io.Writer) []*cobra.Command {
	cmds := []*cobra.Command{
		schemaCmd(out),
		credDefCmd(out),
		credDefExistsCmd(out),
		offerCmd(out),
		issueCmd(out),
		revRegCmd(out),
		revokeCmd(out),
	}

	for _, cmd := range cmds {
		createCommonFlags(cmd)
	}

	return cmds
}

func schemaCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create a schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				id, schema, err := env.issuer.CreateAndStoreSchema(ctx, flagString(cmd, didFlagName),
					flagString(cmd, nameFlagName), flagString(cmd, versionFlagName), flagStrings(cmd, attrsFlagName))
				if err != nil {
					return err
				}

				return printJSON(out, map[string]interface{}{"schema_id": id, "schema": schema})
			})
		},
	}

	cmd.Flags().String(didFlagName, "", "Origin DID of the schema.")
	cmd.Flags().String(nameFlagName, "", "Schema name.")
	cmd.Flags().String(versionFlagName, "", "Schema version.")
	cmd.Flags().StringSlice(attrsFlagName, []string{}, "Schema attribute names.")

	return cmd
}

func credDefCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creddef",
		Short: "Create a credential definition for a schema written to the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				schema, err := readSchema(cmd)
				if err != nil {
					return err
				}

				supportRevocation, err := cmd.Flags().GetBool(supportRevocationFlag)
				if err != nil {
					return err
				}

				id, credDef, err := env.issuer.CreateAndStoreCredentialDefinition(ctx, flagString(cmd, didFlagName),
					schema, "", flagString(cmd, tagFlagName), supportRevocation)
				if err != nil {
					return err
				}

				return printJSON(out, map[string]interface{}{"cred_def_id": id, "cred_def": credDef})
			})
		},
	}

	cmd.Flags().String(didFlagName, "", "Origin DID of the credential definition.")
	cmd.Flags().String(schemaFlagName, "", "Schema JSON including its ledger seqNo."+documentFlagUsageAtRef)
	cmd.Flags().String(tagFlagName, "", "Credential definition tag. Defaults to "+anoncreds.DefaultCredDefTag+".")
	cmd.Flags().Bool(supportRevocationFlag, false, "Whether credentials can be revoked.")

	return cmd
}

func credDefExistsCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creddef-exists",
		Short: "Check whether the wallet holds a credential definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				exists, err := env.issuer.CredentialDefinitionInWallet(ctx, flagString(cmd, credDefIDFlagName))
				if err != nil {
					return err
				}

				return printJSON(out, map[string]bool{"exists": exists})
			})
		},
	}

	cmd.Flags().String(credDefIDFlagName, "", "Credential definition ID.")

	return cmd
}

func offerCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Create a credential offer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				offer, err := env.issuer.CreateCredentialOffer(ctx, flagString(cmd, credDefIDFlagName))
				if err != nil {
					return err
				}

				return printJSON(out, offer)
			})
		},
	}

	cmd.Flags().String(credDefIDFlagName, "", "Credential definition ID.")

	return cmd
}

func issueCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a credential for a credential request",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				schema, err := readSchema(cmd)
				if err != nil {
					return err
				}

				offer := &anoncreds.CredentialOffer{}
				if err = readDocument(cmd, offerFlagName, offer); err != nil {
					return err
				}

				var request json.RawMessage
				if err = readDocument(cmd, requestFlagName, &request); err != nil {
					return err
				}

				values := map[string]interface{}{}
				if err = readDocument(cmd, valuesFlagName, &values); err != nil {
					return err
				}

				revRegID := flagString(cmd, revRegIDFlagName)

				var reader engine.TailsReader

				if revRegID != "" {
					reader, err = env.tailsReader(ctx, revRegID)
					if err != nil {
						return err
					}

					defer reader.Close() //nolint:errcheck
				}

				credential, credRevID, err := env.issuer.CreateCredential(ctx, schema, offer, request, values,
					revRegID, reader)
				if err != nil {
					return err
				}

				result := map[string]interface{}{"credential": credential}
				if credRevID != "" {
					result["cred_rev_id"] = credRevID
				}

				return printJSON(out, result)
			})
		},
	}

	cmd.Flags().String(schemaFlagName, "", "Schema JSON."+documentFlagUsageAtRef)
	cmd.Flags().String(offerFlagName, "", "Credential offer JSON."+documentFlagUsageAtRef)
	cmd.Flags().String(requestFlagName, "", "Credential request JSON."+documentFlagUsageAtRef)
	cmd.Flags().String(valuesFlagName, "", "Raw attribute values as a JSON object."+documentFlagUsageAtRef)
	cmd.Flags().String(revRegIDFlagName, "", "Revocation registry to issue against (optional).")

	return cmd
}

func revRegCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revreg",
		Short: "Create a revocation registry and its tails file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				maxCredNum, err := cmd.Flags().GetInt(maxCredNumFlagName)
				if err != nil {
					return err
				}

				id, def, entry, err := env.issuer.CreateAndStoreRevocationRegistry(ctx, revocation.RegistryConfig{
					OriginDID:     flagString(cmd, didFlagName),
					CredDefID:     flagString(cmd, credDefIDFlagName),
					Tag:           flagString(cmd, tagFlagName),
					MaxCredNum:    maxCredNum,
					TailsBasePath: env.tailsDir,
					URIPattern:    flagString(cmd, uriPatternFlagName),
					IssuanceType:  anoncreds.IssuanceType(flagString(cmd, issuanceTypeFlagName)),
				})
				if err != nil {
					return err
				}

				return printJSON(out, map[string]interface{}{
					"rev_reg_id": id, "rev_reg_def": def, "rev_reg_entry": entry,
				})
			})
		},
	}

	cmd.Flags().String(didFlagName, "", "Origin DID of the registry.")
	cmd.Flags().String(credDefIDFlagName, "", "Credential definition ID.")
	cmd.Flags().String(tagFlagName, "", "Registry tag.")
	cmd.Flags().Int(maxCredNumFlagName, 0, "Number of credentials the registry can hold.")
	cmd.Flags().String(issuanceTypeFlagName, "", "ISSUANCE_BY_DEFAULT (default) or ISSUANCE_ON_DEMAND.")
	cmd.Flags().String(uriPatternFlagName, "", "Public URI of tails files; {hash} is replaced by the tails hash.")

	return cmd
}

func revokeCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an issued credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd, func(ctx context.Context, env *environment) error {
				revRegID := flagString(cmd, revRegIDFlagName)

				reader, err := env.tailsReader(ctx, revRegID)
				if err != nil {
					return err
				}

				defer reader.Close() //nolint:errcheck

				delta, err := env.issuer.RevokeCredential(ctx, revRegID, reader, flagString(cmd, credRevIDFlagName))
				if err != nil {
					return err
				}

				return printJSON(out, delta)
			})
		},
	}

	cmd.Flags().String(revRegIDFlagName, "", "Revocation registry ID.")
	cmd.Flags().String(credRevIDFlagName, "", "Credential revocation ID.")

	return cmd
}

func createCommonFlags(cmd *cobra.Command) {
	// db path flag
	cmd.Flags().StringP(dbPathFlagName, "", "", dbPathFlagUsage)

	// db timeout flag
	cmd.Flags().StringP(dbTimeoutFlagName, "", "", dbTimeoutFlagUsage)

	// tails dir flag
	cmd.Flags().StringP(tailsDirFlagName, "", "", tailsDirFlagUsage)

	// wallet flag
	cmd.Flags().StringP(walletFlagName, "", "", walletFlagUsage)

	// log level
	cmd.Flags().StringP(logLevelFlagName, "", "", logLevelFlagUsage)
}

type environment struct {
	provider storage.Provider
	engine   *memengine.Engine
	wallet   engine.WalletHandle
	issuer   *issuer.Issuer
	tailsDir string
}

func (e *environment) tailsReader(ctx context.Context, revRegID string) (engine.TailsReader, error) {
	record, err := e.issuer.Revocation().Registry(ctx, revRegID)
	if err != nil {
		return nil, err
	}

	return tails.NewStorage().OpenReader(engine.TailsConfig{BaseDir: e.tailsDir}, record.TailsHash)
}

func (e *environment) close() {
	if err := e.engine.CloseWallet(e.wallet); err != nil {
		logger.Warnf("failed to close wallet: %s", err)
	}

	if err := e.provider.Close(); err != nil {
		logger.Warnf("failed to close wallet database: %s", err)
	}
}

func withIssuer(cmd *cobra.Command, fn func(ctx context.Context, env *environment) error) error {
	logLevel, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
	if err != nil {
		return err
	}

	if err = setLogLevel(logLevel); err != nil {
		return err
	}

	env, err := createEnvironment(cmd)
	if err != nil {
		return err
	}

	defer env.close()

	return fn(cmd.Context(), env)
}

func createEnvironment(cmd *cobra.Command) (*environment, error) {
	dbPath, err := getUserSetVar(cmd, dbPathFlagName, dbPathEnvKey, false)
	if err != nil {
		return nil, err
	}

	tailsDir, err := getUserSetVar(cmd, tailsDirFlagName, tailsDirEnvKey, true)
	if err != nil {
		return nil, err
	}

	if tailsDir == "" {
		tailsDir = dbPath + "/tails"
	}

	walletName, err := getUserSetVar(cmd, walletFlagName, walletEnvKey, true)
	if err != nil {
		return nil, err
	}

	if walletName == "" {
		walletName = walletDefault
	}

	timeout, err := getDBTimeout(cmd)
	if err != nil {
		return nil, err
	}

	env := &environment{provider: leveldb.NewProvider(dbPath), tailsDir: tailsDir}
	env.engine = memengine.New(memengine.WithStorageProvider(env.provider))

	var manager *revocation.Manager

	env.wallet, err = openWallet(env.engine, walletName,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), timeout),
		func(wallet engine.WalletHandle) error {
			var managerErr error

			manager, managerErr = revocation.New(env.engine, wallet, revocation.WithStorageProvider(env.provider))

			return managerErr
		})
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet database at %s : %w", dbPath, err)
	}

	env.issuer, err = issuer.New(env.engine, env.wallet, issuer.WithRevocationManager(manager))
	if err != nil {
		return nil, err
	}

	return env, nil
}

type walletOpener interface {
	OpenWallet(name string) (engine.WalletHandle, error)
	CloseWallet(h engine.WalletHandle) error
}

// openWallet opens the named wallet and runs attach on it, retrying both under b. The handle
// of an attempt whose attach failed is closed.
func openWallet(e walletOpener, name string, b backoff.BackOff,
	attach func(engine.WalletHandle) error) (engine.WalletHandle, error) {
	var wallet engine.WalletHandle

	err := backoff.RetryNotify(
		func() error {
			h, err := e.OpenWallet(name)
			if err != nil {
				return err
			}

			if err = attach(h); err != nil {
				if closeErr := e.CloseWallet(h); closeErr != nil {
					logger.Warnf("failed to close wallet %s : %s", name, closeErr)
				}

				return err
			}

			wallet = h

			return nil
		},
		b,
		func(retryErr error, t time.Duration) {
			logger.Warnf("failed to open wallet database, will sleep for %s before trying again : %s", t, retryErr)
		},
	)

	return wallet, err
}

func getDBTimeout(cmd *cobra.Command) (uint64, error) {
	value, err := getUserSetVar(cmd, dbTimeoutFlagName, dbTimeoutEnvKey, true)
	if err != nil {
		return 0, err
	}

	if value == "" {
		value = dbTimeoutDefault
	}

	timeout, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse db timeout %s: %w", value, err)
	}

	return timeout, nil
}

func readSchema(cmd *cobra.Command) (*anoncreds.Schema, error) {
	m := map[string]interface{}{}
	if err := readDocument(cmd, schemaFlagName, &m); err != nil {
		return nil, err
	}

	return anoncreds.SchemaFromMap(m)
}

// readDocument decodes the JSON given inline or as @path in flagName into v.
func readDocument(cmd *cobra.Command, flagName string, v interface{}) error {
	value := flagString(cmd, flagName)
	if value == "" {
		return fmt.Errorf("%s is required", flagName)
	}

	data := []byte(value)

	if strings.HasPrefix(value, "@") {
		var err error

		data, err = os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return fmt.Errorf("read %s: %w", flagName, err)
		}
	}

	// numbers stay json.Number so integral attribute values encode as integers
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", flagName, err)
	}

	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}

	return value
}

func flagStrings(cmd *cobra.Command, name string) []string {
	values, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil
	}

	return values
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}
