package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/csvimport"
	"github.com/foxzi/campaign-console/internal/models"
)

var (
	itemsListPaging paging
	itemsImportDry  bool
	itemsDeleteYes  bool
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List item (recipient) commands",
}

var itemsListCmd = &cobra.Command{
	Use:   "list <list-id>",
	Short: "List the items of a contact list",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsList,
}

var itemsImportCmd = &cobra.Command{
	Use:   "import <list-id> <file.csv>",
	Short: "Import recipients from a CSV file",
	Long: `Import recipients from a CSV file with a header row.

The email column is required and name is optional. Other columns are
stored as recipient variables. Rows with an invalid address or an address
repeated in the file are shown but not uploaded.`,
	Args: cobra.ExactArgs(2),
	RunE: runItemsImport,
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <list-id> <item-id>",
	Short: "Delete an item from a contact list",
	Args:  cobra.ExactArgs(2),
	RunE:  runItemsDelete,
}

func init() {
	itemsListPaging.register(itemsListCmd)
	itemsImportCmd.Flags().BoolVar(&itemsImportDry, "dry-run", false, "Show the preview without uploading")
	itemsDeleteCmd.Flags().BoolVar(&itemsDeleteYes, "yes", false, "Confirm deletion")

	itemsCmd.AddCommand(itemsListCmd, itemsImportCmd, itemsDeleteCmd)
	rootCmd.AddCommand(itemsCmd)
}

func runItemsList(cmd *cobra.Command, args []string) error {
	listID, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Items.SetFilter("list_id", args[0]); err != nil {
			return err
		}
		if err := applyPaging(a.Items.Collection, itemsListPaging); err != nil {
			return err
		}
		if err := a.Items.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to list items of list %d: %w", listID, err)
		}
		printItems(cmd.OutOrStdout(), a)
		return nil
	})
}

func printItems(out io.Writer, a *app.App) {
	st := a.Items.Snapshot()
	if len(st.Items) == 0 {
		fmt.Fprintln(out, "No items found")
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "#\tID\tEMAIL\tNAME\tSTATUS\tADDED")
	fmt.Fprintln(w, "-\t--\t-----\t----\t------\t-----")
	for i, it := range st.Items {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			st.RowNumber(i), it.ID, it.Email, it.Name, it.Status, it.CreatedDate.Date())
	}
	w.Flush()
	printPager(out, st)
}

func runItemsImport(cmd *cobra.Command, args []string) error {
	listID, err := parseID(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	batch, err := csvimport.Parse(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPreview(out, batch)
	if itemsImportDry {
		return nil
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Items.Open(ctx, listID); err != nil {
			return fmt.Errorf("failed to open list %d: %w", listID, err)
		}

		resp, err := a.Items.Import(ctx, batch)
		if errors.Is(err, csvimport.ErrNoValidRows) {
			return fmt.Errorf("nothing to upload: %w", err)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nUploaded: %d inserted, %d skipped by the server\n", resp.Inserted, resp.Skipped)
		fmt.Fprintf(out, "List %d now has %d items\n", listID, a.Items.Snapshot().Total)
		return nil
	})
}

func printPreview(out io.Writer, batch *csvimport.Batch) {
	w := newTable(out)
	fmt.Fprintln(w, "LINE\tSTATUS\tEMAIL\tNAME\tNOTE")
	fmt.Fprintln(w, "----\t------\t-----\t----\t----")
	for _, row := range batch.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", row.Line, row.Status, truncate(row.Email, 40), row.Name, row.Reason)
	}
	w.Flush()

	counts := batch.Counts()
	fmt.Fprintf(out, "\n%d rows: %d valid, %d duplicate, %d invalid\n",
		len(batch.Rows), counts[models.ItemValid], counts[models.ItemDuplicate], counts[models.ItemInvalid])
}

func runItemsDelete(cmd *cobra.Command, args []string) error {
	listID, err := parseID(args[0])
	if err != nil {
		return err
	}
	itemID, err := parseID(args[1])
	if err != nil {
		return err
	}
	if err := confirm(itemsDeleteYes, fmt.Sprintf("item %d", itemID)); err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Items.Open(ctx, listID); err != nil {
			return fmt.Errorf("failed to open list %d: %w", listID, err)
		}
		if err := a.Items.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Item %d deleted from list %d\n", itemID, listID)
		return nil
	})
}
