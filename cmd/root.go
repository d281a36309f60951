package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dtroode/cabinet/internal/model"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cabinet",
		Short:         "Keep named secrets encrypted at rest",
		Long:          `Stores key/value pairs whose values are sealed with a device master key kept in the OS keystore.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipOpen] == "true" {
				return nil
			}
			return a.Open(cmd.Context())
		},
	}

	root.AddCommand(
		newVersionCmd(),
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCopyCmd(a),
		newSetCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newDrawerCmd(a),
		newPasscodeCmd(a),
		newKeyCmd(a),
		newBackupCmd(a),
	)

	return root
}

const skipOpen = "skip-open"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{skipOpen: "true"},
		Run: func(*cobra.Command, []string) {
			logAppVersion()
		},
	}
}

// checkKey warns when stored values were sealed with another master key. The
// command still runs so that new values can be saved.
func checkKey(cmd *cobra.Command, a *app) error {
	err := a.vault.CheckKey(cmd.Context())
	if errors.Is(err, model.ErrKeyMismatch) {
		cmd.PrintErrln(color.YellowString("!") + " The master key changed. Existing values cannot be decrypted.")
		cmd.PrintErrln(color.CyanString("→") + " Run " + color.YellowString("cabinet key reset --purge --yes") + " to start over.")
		return nil
	}
	return err
}
