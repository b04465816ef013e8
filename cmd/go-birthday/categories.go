package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

func (c *cli) categoriesCommand() *cobra.Command {
	cats := &cobra.Command{
		Use:   config.CmdCats,
		Short: config.CmdCatsShort,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			stats, err := s.svc.CategoryStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCategories(s.tr, stats))
			return nil
		}),
	}
	cats.AddCommand(
		c.categoryAddCommand(),
		c.categoryRenameCommand(),
		c.categoryDeleteCommand(),
		c.categoryRestoreCommand(),
		c.categoryOrphansCommand(),
	)
	return cats
}

func (c *cli) categoryAddCommand() *cobra.Command {
	var name, icon, color string
	cmd := &cobra.Command{
		Use:   config.CmdCatsAdd,
		Short: config.CmdCatsAddSh,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			created, err := s.svc.AddCategory(cmd.Context(), name, icon, color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutCategoryAdded, created.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&icon, config.FlagIcon, "", config.FlagDescIcon)
	cmd.Flags().StringVar(&color, config.FlagColor, "", config.FlagDescColor)
	_ = cmd.MarkFlagRequired(config.FlagName)
	return cmd
}

// categoryRenameCommand overrides only the fields whose flag was given.
func (c *cli) categoryRenameCommand() *cobra.Command {
	var name, icon, color string
	cmd := &cobra.Command{
		Use:   config.CmdCatsRename,
		Short: config.CmdCatsRenSh,
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, s *session) error {
			current, ok := s.svc.Categories.Resolve(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", category.ErrUnknownCategory, args[0])
			}
			if cmd.Flags().Changed(config.FlagName) {
				current.Name = name
			}
			if cmd.Flags().Changed(config.FlagIcon) {
				current.Icon = icon
			}
			if cmd.Flags().Changed(config.FlagColor) {
				current.Color = color
			}
			if err := s.svc.UpdateCategory(cmd.Context(), current); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutCategorySaved, current.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&icon, config.FlagIcon, "", config.FlagDescIcon)
	cmd.Flags().StringVar(&color, config.FlagColor, "", config.FlagDescColor)
	return cmd
}

func (c *cli) categoryDeleteCommand() *cobra.Command {
	var reassign string
	var orphan bool
	cmd := &cobra.Command{
		Use:   config.CmdCatsDelete,
		Short: config.CmdCatsDelSh,
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, s *session) error {
			id := args[0]
			var d category.Disposition
			switch {
			case reassign != "":
				d = category.Reassign(reassign)
			case orphan:
				d = category.Orphan()
			}

			_, err := s.svc.DeleteCategory(cmd.Context(), id, d)
			if errors.Is(err, category.ErrDispositionRequired) {
				affected, aerr := s.svc.CategoryAffected(cmd.Context(), id)
				if aerr != nil {
					return aerr
				}
				return errors.New(s.tr.Format(config.TKeyDeleteBlocked, map[string]any{"Count": len(affected)}))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.tr.Format(config.TKeyDeleteCompleted, map[string]any{"ID": id}))
			return nil
		}),
	}
	cmd.Flags().StringVar(&reassign, config.FlagReassign, "", config.FlagDescReassign)
	cmd.Flags().BoolVar(&orphan, config.FlagOrphan, false, config.FlagDescOrphan)
	cmd.MarkFlagsMutuallyExclusive(config.FlagReassign, config.FlagOrphan)
	return cmd
}

func (c *cli) categoryRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdCatsRestore,
		Short: config.CmdCatsResSh,
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.svc.RestoreCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutCategoryRestored, args[0])
			return nil
		}),
	}
}

func (c *cli) categoryOrphansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdCatsOrphans,
		Short: config.CmdCatsOrphSh,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			orphans, err := s.svc.Orphans(cmd.Context())
			if err != nil {
				return err
			}
			if len(orphans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderHint(config.OutNoOrphans))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOrphans(s.tr, orphans))
			return nil
		}),
	}
}
