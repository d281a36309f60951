package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPasscodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passcode",
		Short: "Manage the passcode that guards hidden pairs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Set or replace the passcode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			enrolled, err := a.passcode.Enrolled(ctx)
			if err != nil {
				return err
			}
			if enrolled {
				if err := a.passcode.Authenticate(ctx, "Enter the current passcode."); err != nil {
					return err
				}
			}

			first, err := stdin.ReadSecret(cmd.ErrOrStderr(), "New passcode: ")
			if err != nil {
				return err
			}
			second, err := stdin.ReadSecret(cmd.ErrOrStderr(), "Repeat passcode: ")
			if err != nil {
				return err
			}
			if first != second {
				return errors.New("passcodes do not match")
			}

			if err := a.passcode.Enroll(ctx, first); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Passcode saved")
			return nil
		},
	})

	return cmd
}

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect or reset the master key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify that stored values were sealed with the current master key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.vault.CheckKey(cmd.Context()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Master key matches stored values")
			return nil
		},
	})

	var purge, yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the master key; a new one is created on next use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("existing values become unreadable, pass --yes to continue")
			}
			if err := a.vault.ResetKey(cmd.Context(), purge); err != nil {
				return err
			}
			msg := "Master key deleted"
			if purge {
				msg += " and all pairs removed"
			}
			printSuccess(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	reset.Flags().BoolVar(&purge, "purge", false, "also delete every pair")
	reset.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	cmd.AddCommand(reset)

	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import encrypted snapshots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Upload a snapshot of all pairs and drawers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := a.backup.Export(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Exported snapshot "+color.YellowString(name))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <name>",
		Short: "Restore a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backup.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Restored %d pairs and %d drawers", res.Pairs, res.Drawers))
			return nil
		},
	})

	return cmd
}
