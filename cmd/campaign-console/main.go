package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/config"
	"github.com/foxzi/campaign-console/internal/store"
)

var (
	cfgFile   string
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "campaign-console",
	Short:         "Campaign Console - campaign administration client",
	Long:          `Campaign Console manages users, contact lists, templates and campaigns on a campaign backend.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "campaign-console version %s\n", version)
		if commit != "unknown" {
			fmt.Fprintf(out, "  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			fmt.Fprintf(out, "  built:  %s\n", buildTime)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file path")

	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd, versionCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration is valid\n")
	fmt.Fprintf(out, "  API:       %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  Session:   %s\n", cfg.Session.Path)
	fmt.Fprintf(out, "  Page size: %d\n", cfg.Store.PageSize)
	fmt.Fprintf(out, "  Logging:   %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Metrics:   %s\n", cfg.Metrics.Textfile)
	}

	return nil
}

// openApp loads the configuration and builds the application
func openApp() (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	slog.SetDefault(application.Logger())

	return application, nil
}

// withApp runs fn against a freshly built application and closes it
// afterwards. When auth is set the command refuses to run logged out.
func withApp(cmd *cobra.Command, auth bool, fn func(ctx context.Context, a *app.App) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if auth {
		if err := a.RequireLogin(); err != nil {
			return fmt.Errorf("%w (run 'campaign-console login' first)", err)
		}
	}

	return fn(cmd.Context(), a)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// confirm implements the confirmation step required before deletes
func confirm(yes bool, what string) error {
	if !yes {
		return fmt.Errorf("refusing to delete %s without --yes", what)
	}
	return nil
}

// paging holds the --page and --limit flags of a list command
type paging struct {
	page  int
	limit int
}

func (p *paging) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&p.limit, "limit", 0, "Page size (default from config)")
}

// apply positions a collection. Filters must be set before, since they
// reset the page.
func applyPaging[T any, F store.Filter[F]](c *store.Collection[T, F], p paging) error {
	if p.page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}
	if p.limit > 0 {
		c.SetLimit(p.limit)
	}
	c.SetPage(p.page)
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPager[T, F any](w io.Writer, st store.State[T, F]) {
	fmt.Fprintf(w, "\nPage %d of %d (%d total)\n", st.Page, st.TotalPages(), st.Total)
	if st.Page > st.TotalPages() {
		fmt.Fprintf(w, "Page %d is past the last page\n", st.Page)
	}
}

// truncate shortens s to at most n runes, ending with "..." when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:max(n, 0)])
	}
	return string(runes[:n-3]) + "..."
}
