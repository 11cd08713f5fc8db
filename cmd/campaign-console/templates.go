package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/models"
)

var (
	templatesListPaging paging
	templatesListTitle  string
	templatesListStatus string
	templatesAddTitle   string
	templatesAddFile    string
	templatesSaveFile   string
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Message template commands",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a template design",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a template",
	RunE:  runTemplatesAdd,
}

var templatesSaveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Replace a template design",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesSave,
}

var templatesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesToggle,
}

func init() {
	templatesListPaging.register(templatesListCmd)
	templatesListCmd.Flags().StringVar(&templatesListTitle, "title", "", "Filter by title")
	templatesListCmd.Flags().StringVar(&templatesListStatus, "status", "", "Filter by status (enabled, disabled)")

	templatesAddCmd.Flags().StringVar(&templatesAddTitle, "title", "", "Template title")
	templatesAddCmd.Flags().StringVar(&templatesAddFile, "file", "", "JSON design file")
	templatesAddCmd.MarkFlagRequired("title")

	templatesSaveCmd.Flags().StringVar(&templatesSaveFile, "file", "", "JSON design file")
	templatesSaveCmd.MarkFlagRequired("file")

	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd, templatesAddCmd, templatesSaveCmd, templatesToggleCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Templates.SetFilter("title", templatesListTitle); err != nil {
			return err
		}
		if err := a.Templates.SetFilter("status", templatesListStatus); err != nil {
			return err
		}
		if err := applyPaging(a.Templates.Collection, templatesListPaging); err != nil {
			return err
		}
		if err := a.Templates.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}

		st := a.Templates.Snapshot()
		out := cmd.OutOrStdout()
		if len(st.Items) == 0 {
			fmt.Fprintln(out, "No templates found")
			return nil
		}

		w := newTable(out)
		fmt.Fprintln(w, "#\tID\tTITLE\tSTATUS\tCREATED")
		fmt.Fprintln(w, "-\t--\t-----\t------\t-------")
		for i, t := range st.Items {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", st.RowNumber(i), t.ID, truncate(t.Title, 40), t.Status, t.CreatedDate.Date())
		}
		w.Flush()
		printPager(out, st)
		return nil
	})
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		t, err := a.Templates.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get template: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %d\n", t.ID)
		fmt.Fprintf(out, "Title:   %s\n", t.Title)
		fmt.Fprintf(out, "Status:  %s\n", t.Status)
		fmt.Fprintf(out, "Created: %s\n", t.CreatedDate.Date())
		if t.Content != "" {
			fmt.Fprintf(out, "\n%s\n", t.Content)
		}
		return nil
	})
}

func readDesign(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read design file: %w", err)
	}
	return string(data), nil
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	content, err := readDesign(templatesAddFile)
	if err != nil {
		return err
	}
	draft := models.TemplateDraft{Title: templatesAddTitle, Content: content}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		created, err := a.Templates.Add(ctx, draft)
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template %q created with id %d\n", created.Title, created.ID)
		return nil
	})
}

func runTemplatesSave(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	content, err := readDesign(templatesSaveFile)
	if err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Templates.UpdateContent(ctx, id, content); err != nil {
			return fmt.Errorf("failed to save template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template %d saved\n", id)
		return nil
	})
}

func runTemplatesToggle(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		status, err := a.Templates.Toggle(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to toggle template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template %d is now %s\n", id, status)
		return nil
	})
}
