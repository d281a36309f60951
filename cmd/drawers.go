package main

import (
	"github.com/spf13/cobra"

	"github.com/dtroode/cabinet/internal/model"
)

func newDrawerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawer",
		Short: "Manage drawers that group pairs",
	}

	cmd.AddCommand(
		newDrawerAddCmd(a),
		newDrawerListCmd(a),
		newDrawerEditCmd(a),
		newDrawerRemoveCmd(a),
	)

	return cmd
}

func newDrawerAddCmd(a *app) *cobra.Command {
	var params model.CreateDrawerParams

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a drawer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Name = args[0]
			d, err := a.drawers.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Created drawer "+d.Name+" ("+d.ID.String()+")")
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&params.Purpose, "purpose", "", "what the drawer is for")

	return cmd
}

func newDrawerListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List drawers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			drawers, err := a.drawers.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range drawers {
				printDrawer(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func newDrawerEditCmd(a *app) *cobra.Command {
	var name, icon, purpose string

	cmd := &cobra.Command{
		Use:   "edit <name|id>",
		Short: "Change a drawer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.drawers.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			var params model.UpdateDrawerParams
			if cmd.Flags().Changed("name") {
				params.Name = &name
			}
			if cmd.Flags().Changed("icon") {
				params.Icon = &icon
			}
			if cmd.Flags().Changed("purpose") {
				params.Purpose = &purpose
			}

			d, err = a.drawers.Update(ctx, d.ID, params)
			if err != nil {
				return err
			}
			printDrawer(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&purpose, "purpose", "", "what the drawer is for")

	return cmd
}

func newDrawerRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name|id>",
		Short: "Delete a drawer and keep its pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.drawers.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.drawers.Delete(ctx, d.ID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted drawer "+d.Name)
			return nil
		},
	}
}
