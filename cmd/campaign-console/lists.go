package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/models"
)

var (
	listsListPaging paging
	listsDeleteYes  bool
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Contact list commands",
}

var listsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contact lists",
	RunE:  runListsList,
}

var listsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show list details",
	Args:  cobra.ExactArgs(1),
	RunE:  runListsShow,
}

var listsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a contact list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runListsAdd,
}

var listsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a contact list",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runListsRename,
}

var listsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact list and its items",
	Args:  cobra.ExactArgs(1),
	RunE:  runListsDelete,
}

func init() {
	listsListPaging.register(listsListCmd)
	listsDeleteCmd.Flags().BoolVar(&listsDeleteYes, "yes", false, "Confirm deletion")

	listsCmd.AddCommand(listsListCmd, listsShowCmd, listsAddCmd, listsRenameCmd, listsDeleteCmd)
	rootCmd.AddCommand(listsCmd)
}

func runListsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := applyPaging(a.Lists.Collection, listsListPaging); err != nil {
			return err
		}
		if err := a.Lists.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to list contact lists: %w", err)
		}
		printLists(cmd, a)
		return nil
	})
}

func printLists(cmd *cobra.Command, a *app.App) {
	st := a.Lists.Snapshot()
	out := cmd.OutOrStdout()
	if len(st.Items) == 0 {
		fmt.Fprintln(out, "No contact lists found")
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "#\tID\tNAME\tAUDIENCE\tCREATED")
	fmt.Fprintln(w, "-\t--\t----\t--------\t-------")
	for i, l := range st.Items {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\n", st.RowNumber(i), l.ID, l.Name, l.AudienceCount, l.CreatedDate.Date())
	}
	w.Flush()
	printPager(out, st)
}

func runListsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		l, err := a.Lists.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get list: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:       %d\n", l.ID)
		fmt.Fprintf(out, "Name:     %s\n", l.Name)
		fmt.Fprintf(out, "Audience: %d\n", l.AudienceCount)
		fmt.Fprintf(out, "Created:  %s\n", l.CreatedDate.Date())
		return nil
	})
}

func runListsAdd(cmd *cobra.Command, args []string) error {
	draft := models.ListDraft{Name: strings.Join(args, " ")}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Lists.Add(ctx, draft); err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "List %q created\n", draft.Name)
		return nil
	})
}

func runListsRename(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	draft := models.ListDraft{Name: strings.Join(args[1:], " ")}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Lists.Rename(ctx, id, draft); err != nil {
			return fmt.Errorf("failed to rename list: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "List %d renamed to %q\n", id, draft.Name)
		return nil
	})
}

func runListsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := confirm(listsDeleteYes, fmt.Sprintf("list %d", id)); err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Lists.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "List %d deleted\n", id)
		return nil
	})
}
