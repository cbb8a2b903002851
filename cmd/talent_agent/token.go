package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/talent-matcher/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator token",
	Long:  "Sign a bearer token for the operator endpoints (shortlist, reject, reset, email and status changes) with jwt_secret.",
	RunE:  runToken,
}

var tokenOperator string

func init() {
	tokenCmd.Flags().StringVarP(&tokenOperator, "operator", "u", "", "Operator name recorded in the token subject (required)")
	if err := tokenCmd.MarkFlagRequired("operator"); err != nil {
		panic(fmt.Sprintf("failed to mark operator flag as required: %v", err))
	}
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if !cfg.AuthEnabled() {
		return errors.New("jwt_secret is not set; operator endpoints are open")
	}

	jwtCfg, err := cfg.JWT()
	if err != nil {
		return err
	}
	token, _, err := server.NewOperatorTokens(jwtCfg).Issue(tokenOperator)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
