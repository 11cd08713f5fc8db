package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/models"
)

var (
	usersListPaging paging
	userDraft       models.UserDraft
	usersDeleteYes  bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User management commands",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	RunE:  runUsersAdd,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersListPaging.register(usersListCmd)

	usersAddCmd.Flags().StringVar(&userDraft.Name, "name", "", "Full name")
	usersAddCmd.Flags().StringVar(&userDraft.Email, "email", "", "Email address")
	usersAddCmd.Flags().StringVar(&userDraft.MobileCountryCode, "country-code", "", "Mobile country code, e.g. +1")
	usersAddCmd.Flags().StringVar(&userDraft.Mobile, "mobile", "", "Mobile number")
	usersAddCmd.Flags().StringVar(&userDraft.Password, "password", "", "Initial password")
	usersAddCmd.Flags().StringVar(&userDraft.Role, "role", "", "Role")

	usersDeleteCmd.Flags().BoolVar(&usersDeleteYes, "yes", false, "Confirm deletion")

	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := applyPaging(a.Users.Collection, usersListPaging); err != nil {
			return err
		}
		if err := a.Users.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		printUsers(cmd, a)
		return nil
	})
}

func printUsers(cmd *cobra.Command, a *app.App) {
	st := a.Users.Snapshot()
	out := cmd.OutOrStdout()
	if len(st.Items) == 0 {
		fmt.Fprintln(out, "No users found")
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "#\tID\tNAME\tEMAIL\tMOBILE\tROLE")
	fmt.Fprintln(w, "-\t--\t----\t-----\t------\t----")
	for i, u := range st.Items {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			st.RowNumber(i), u.ID, u.Name, u.Email, u.MobileCountryCode+u.Mobile, u.Role)
	}
	w.Flush()
	printPager(out, st)
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Users.Add(ctx, userDraft); err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %s created\n", userDraft.Name)
		return nil
	})
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := confirm(usersDeleteYes, fmt.Sprintf("user %d", id)); err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Users.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted\n", id)
		return nil
	})
}
