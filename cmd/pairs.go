package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dtroode/cabinet/internal/model"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		params  model.CreatePairParams
		value   string
		drawers []string
	)

	cmd := &cobra.Command{
		Use:   "add <key>",
		Short: "Add a pair",
		Long:  `Adds a pair. The value is read from --value, or from the terminal without echo.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := checkKey(cmd, a); err != nil {
				return err
			}

			ids, err := resolveDrawers(ctx, a, drawers)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("value") {
				value, err = stdin.ReadSecret(cmd.ErrOrStderr(), "Value: ")
				if err != nil {
					return err
				}
			}

			params.Key = args[0]
			params.Value = value
			params.Drawers = ids

			pair, err := a.pairs.Create(ctx, params)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Added "+pair.Key+" ("+pair.ID.String()+")")
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "value to store")
	cmd.Flags().StringVar(&params.Icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&params.Notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&params.IsFavorite, "favorite", false, "mark as favorite")
	cmd.Flags().BoolVar(&params.IsHidden, "hidden", false, "require the passcode to reveal")
	cmd.Flags().StringArrayVar(&drawers, "drawer", nil, "drawer id or name, repeatable")

	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		filter string
		drawer string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pairs without revealing values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			query := model.ListQuery{Filter: model.Filter(filter)}
			if drawer != "" {
				d, err := a.drawers.Resolve(ctx, drawer)
				if err != nil {
					return err
				}
				query.Drawer = &d.ID
			}

			pairs, err := a.pairs.List(ctx, query)
			if err != nil {
				return err
			}
			for _, p := range pairs {
				printPair(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(model.FilterAll), "all, favorites or recents")
	cmd.Flags().StringVar(&drawer, "drawer", "", "drawer id or name")

	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <key|id>",
		Short: "Reveal a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := checkKey(cmd, a); err != nil {
				return err
			}

			pair, err := a.pairs.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			value, err := a.pairs.Reveal(ctx, pair.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <key|id>",
		Short: "Copy a value to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := checkKey(cmd, a); err != nil {
				return err
			}

			pair, err := a.pairs.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.pairs.Copy(ctx, pair.ID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Copied "+pair.Key)
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <key|id>",
		Short: "Replace a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := checkKey(cmd, a); err != nil {
				return err
			}

			pair, err := a.pairs.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("value") {
				value, err = stdin.ReadSecret(cmd.ErrOrStderr(), "New value: ")
				if err != nil {
					return err
				}
			}
			if _, err := a.pairs.SetValue(ctx, pair.ID, value); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Updated "+pair.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "new value")

	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		key, icon, notes string
		favorite, hidden bool
		drawers          []string
	)

	cmd := &cobra.Command{
		Use:   "edit <key|id>",
		Short: "Change pair details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pair, err := a.pairs.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			var params model.UpdatePairParams
			flags := cmd.Flags()
			if flags.Changed("key") {
				params.Key = &key
			}
			if flags.Changed("icon") {
				params.Icon = &icon
			}
			if flags.Changed("notes") {
				params.Notes = &notes
			}
			if flags.Changed("favorite") {
				params.IsFavorite = &favorite
			}
			if flags.Changed("hidden") {
				params.IsHidden = &hidden
			}
			if flags.Changed("drawer") {
				ids, err := resolveDrawers(ctx, a, drawers)
				if err != nil {
					return err
				}
				params.Drawers = &ids
			}

			pair, err = a.pairs.Update(ctx, pair.ID, params)
			if err != nil {
				return err
			}
			printPair(cmd.OutOrStdout(), pair)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "new key")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "mark as favorite")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "require the passcode to reveal")
	cmd.Flags().StringArrayVar(&drawers, "drawer", nil, "drawer id or name, repeatable; pass \"\" to clear")

	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key|id>",
		Aliases: []string{"remove"},
		Short:   "Delete a pair",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pair, err := a.pairs.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.pairs.Delete(ctx, pair.ID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted "+pair.Key)
			return nil
		},
	}
}

func resolveDrawers(ctx context.Context, a *app, refs []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		d, err := a.drawers.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}
