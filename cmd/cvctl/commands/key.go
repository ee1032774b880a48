package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cv-improver/internal/credentials"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored Gemini API key",
	}
	cmd.AddCommand(keySetCmd(), keyCheckCmd(), keyClearCmd())
	return cmd
}

// key set <api-key>: validate and store the key.
func keySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <api-key>",
		Short: "Validate an API key and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.session.ValidateAndSaveAPIKey(cmd.Context(), args[0]); err != nil {
				return errors.New(env.session.State().Settings.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), env.session.State().Settings.SaveLabel)
			return nil
		},
	}
}

// key check: validate the stored key against the provider.
func keyCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the stored API key with the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := env.store.Get(cmd.Context(), cliOwner)
			if errors.Is(err, credentials.ErrNotFound) {
				return errors.New(env.catalog.Text(env.session.Locale(), "error_missing_key"))
			}
			if err != nil {
				return err
			}
			if err := env.provider.ValidateCredential(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), env.catalog.Text(env.session.Locale(), "key_valid_text"))
			return nil
		},
	}
}

func keyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.session.ClearAPIKey(cmd.Context())
		},
	}
}
