package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/models"
)

var (
	campaignsListPaging paging
	campaignsListName   string
	campaignsDeleteYes  bool
)

// campaign create flags
var (
	campaignName     string
	campaignChannels string
	campaignFrom     string
	campaignStart    string
	campaignListID   int64
	campaignTemplate int64
	campaignTo       string
	campaignCC       string
	campaignBCC      string
	campaignRepeat   string
	campaignEndsOn   string
	campaignDraft    bool
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Campaign commands",
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE:  runCampaignsList,
}

var campaignsOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the lists and templates a campaign can use",
	RunE:  runCampaignsOptions,
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Example: `  campaign-console campaigns create --name "Spring sale" --channels email \
    --from news@example.com --start "2026-04-01 09:00" --list 12 --template 7 \
    --to ops@example.com --repeat Week --ends-on 2026-06-30`,
	RunE: runCampaignsCreate,
}

var campaignsCopyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Copy a campaign as a new draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsCopy,
}

var campaignsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsDelete,
}

func init() {
	campaignsListPaging.register(campaignsListCmd)
	campaignsListCmd.Flags().StringVar(&campaignsListName, "name", "", "Filter by name")

	f := campaignsCreateCmd.Flags()
	f.StringVar(&campaignName, "name", "", "Campaign name")
	f.StringVar(&campaignChannels, "channels", models.ChannelEmail, "Comma separated channels (whatsapp, sms, email)")
	f.StringVar(&campaignFrom, "from", "", "Sender address for the email channel")
	f.StringVar(&campaignStart, "start", "", "Start time, RFC 3339 or \"2006-01-02 15:04\" local time")
	f.Int64Var(&campaignListID, "list", 0, "Audience list id")
	f.Int64Var(&campaignTemplate, "template", 0, "Template id")
	f.StringVar(&campaignTo, "to", "", "Comma separated 'to' recipients")
	f.StringVar(&campaignCC, "cc", "", "Comma separated 'cc' recipients")
	f.StringVar(&campaignBCC, "bcc", "", "Comma separated 'bcc' recipients")
	f.StringVar(&campaignRepeat, "repeat", "", "Repeat frequency (Day, Week, Month)")
	f.StringVar(&campaignEndsOn, "ends-on", "", "Last repeat date, YYYY-MM-DD (repeats forever when omitted)")
	f.BoolVar(&campaignDraft, "draft", false, "Save as draft instead of publishing")

	campaignsDeleteCmd.Flags().BoolVar(&campaignsDeleteYes, "yes", false, "Confirm deletion")

	campaignsCmd.AddCommand(campaignsListCmd, campaignsOptionsCmd, campaignsCreateCmd, campaignsCopyCmd, campaignsDeleteCmd)
	rootCmd.AddCommand(campaignsCmd)
}

func runCampaignsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Campaigns.SetFilter("name", campaignsListName); err != nil {
			return err
		}
		if err := applyPaging(a.Campaigns.Collection, campaignsListPaging); err != nil {
			return err
		}
		if err := a.Campaigns.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to list campaigns: %w", err)
		}

		st := a.Campaigns.Snapshot()
		out := cmd.OutOrStdout()
		if len(st.Items) == 0 {
			fmt.Fprintln(out, "No campaigns found")
			return nil
		}

		w := newTable(out)
		fmt.Fprintln(w, "#\tID\tNAME\tCHANNEL\tSTATUS\tSTART\tREPEAT")
		fmt.Fprintln(w, "-\t--\t----\t-------\t------\t-----\t------")
		for i, c := range st.Items {
			repeat := "-"
			if c.Repeat && c.RepeatFrequency != nil {
				repeat = *c.RepeatFrequency
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
				st.RowNumber(i), c.ID, truncate(c.Name, 40), c.Channel, c.Status, c.StartDate.Date(), repeat)
		}
		w.Flush()
		printPager(out, st)
		return nil
	})
}

func runCampaignsOptions(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		opts, err := a.FormOptions(ctx)
		if err != nil {
			return fmt.Errorf("failed to load campaign options: %w", err)
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "KIND\tID\tNAME\tDETAIL")
		fmt.Fprintln(w, "----\t--\t----\t------")
		for _, l := range opts.Lists {
			fmt.Fprintf(w, "list\t%d\t%s\t%d recipients\n", l.ID, l.Name, l.AudienceCount)
		}
		for _, t := range opts.Templates {
			fmt.Fprintf(w, "template\t%d\t%s\t%s\n", t.ID, t.Title, t.Status)
		}
		return w.Flush()
	})
}

// parseStart accepts RFC 3339 or a local "2006-01-02 15:04"
func parseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start %q", s)
	}
	return t, nil
}

func splitChannels(s string) []string {
	var out []string
	for _, ch := range strings.Split(s, ",") {
		if ch = strings.ToLower(strings.TrimSpace(ch)); ch != "" {
			out = append(out, ch)
		}
	}
	return out
}

func buildCampaignDraft() (models.CampaignDraft, error) {
	start, err := parseStart(campaignStart)
	if err != nil {
		return models.CampaignDraft{}, err
	}

	draft := models.CampaignDraft{
		Name:           campaignName,
		Channels:       splitChannels(campaignChannels),
		EmailFrom:      campaignFrom,
		StartDate:      start,
		AudienceListID: campaignListID,
		TemplateID:     campaignTemplate,
		Recipients: models.Recipients{
			To:  models.SanitizeEmails(campaignTo),
			CC:  models.SanitizeEmails(campaignCC),
			BCC: models.SanitizeEmails(campaignBCC),
		},
	}
	if campaignDraft {
		draft.Status = models.CampaignStatusDraft
	}
	if campaignRepeat != "" {
		draft.Repeat = true
		draft.RepeatFrequency = campaignRepeat
		draft.RepeatEndsOn = models.RepeatEndsNever
		if campaignEndsOn != "" {
			draft.RepeatEndsOn = models.RepeatEndsOn
			draft.RepeatEndDate = campaignEndsOn
		}
	}
	return draft, nil
}

func runCampaignsCreate(cmd *cobra.Command, args []string) error {
	draft, err := buildCampaignDraft()
	if err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("campaign is incomplete: %w", err)
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Campaigns.Create(ctx, draft); err != nil {
			return fmt.Errorf("failed to create campaign: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Campaign %q created\n", draft.Name)
		return nil
	})
}

func runCampaignsCopy(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Campaigns.Copy(ctx, id); err != nil {
			return fmt.Errorf("failed to copy campaign: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Campaign %d copied\n", id)
		return nil
	})
}

func runCampaignsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := confirm(campaignsDeleteYes, fmt.Sprintf("campaign %d", id)); err != nil {
		return err
	}

	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		if err := a.Campaigns.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete campaign: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Campaign %d deleted\n", id)
		return nil
	})
}
