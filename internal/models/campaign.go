package models

import (
	"slices"
	"strings"
	"time"

	"github.com/foxzi/campaign-console/internal/email"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "Draft"
	CampaignStatusPublished CampaignStatus = "Published"
)

// Channels a campaign can be delivered on
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelEmail    = "email"
)

var (
	Channels          = []string{ChannelWhatsApp, ChannelSMS, ChannelEmail}
	RepeatFrequencies = []string{"Day", "Week", "Month"}
)

const (
	RepeatEndsNever = "never"
	RepeatEndsOn    = "on"
)

// Recipients are the explicit addressees of a campaign, in addition to
// its audience list
type Recipients struct {
	To  []string `json:"to"`
	CC  []string `json:"cc"`
	BCC []string `json:"bcc"`
}

// Campaign sends a template to an audience list on a schedule
type Campaign struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Channel         string         `json:"channel"` // comma separated
	Status          CampaignStatus `json:"status"`
	StartDate       Timestamp      `json:"startDate"`
	Repeat          bool           `json:"repeat"`
	RepeatFrequency *string        `json:"repeatFrequency,omitempty"`
	RepeatEndsOn    *string        `json:"repeatEndsOn,omitempty"`
	RepeatEndDate   *string        `json:"repeatEndDate,omitempty"`
	Recipients      Recipients     `json:"recipients"`
	TemplateID      int64          `json:"templateId"`
	AudienceListID  int64          `json:"audienceListId"`
	EmailFrom       string         `json:"emailFrom,omitempty"`
	CreatedAt       Timestamp      `json:"createdAt"`
	ModifiedAt      Timestamp      `json:"modifiedAt"`
}

// CampaignDraft is filled in by the campaign wizard. Payload converts it
// to the wire shape.
type CampaignDraft struct {
	Name            string
	Channels        []string
	EmailFrom       string
	Status          CampaignStatus
	StartDate       time.Time
	Repeat          bool
	RepeatFrequency string
	RepeatEndsOn    string
	RepeatEndDate   string // YYYY-MM-DD
	AudienceListID  int64
	TemplateID      int64
	Recipients      Recipients
}

// CampaignPayload is the body of POST /campaign/create
type CampaignPayload struct {
	Name            string         `json:"name"`
	Channel         string         `json:"channel"`
	Status          CampaignStatus `json:"status"`
	StartDate       string         `json:"startDate"`
	Repeat          bool           `json:"repeat"`
	AudienceListID  int64          `json:"audienceListId"`
	Recipients      Recipients     `json:"recipients"`
	TemplateID      int64          `json:"templateId"`
	RepeatFrequency *string        `json:"repeatFrequency"`
	RepeatEndsOn    *string        `json:"repeatEndsOn"`
	RepeatEndDate   *string        `json:"repeatEndDate"`
	EmailFrom       string         `json:"emailFrom"`
}

// Validate runs the wizard's step checks in order
func (d CampaignDraft) Validate() error {
	var errs ValidationErrors

	if len(d.Channels) == 0 {
		errs = append(errs, "select at least one channel")
	}
	for _, ch := range d.Channels {
		if !slices.Contains(Channels, ch) {
			errs = append(errs, "unknown channel "+ch)
		}
	}

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "campaign name is required")
	}
	if slices.Contains(d.Channels, ChannelEmail) {
		switch from := strings.TrimSpace(d.EmailFrom); {
		case from == "":
			errs = append(errs, "email 'from' is required")
		case !email.IsValid(from):
			errs = append(errs, "email 'from' is not a valid address")
		}
	}
	if d.StartDate.IsZero() {
		errs = append(errs, "start date is required")
	}

	if d.AudienceListID == 0 {
		errs = append(errs, "select an audience list")
	}

	if len(d.Recipients.To) == 0 {
		errs = append(errs, "add at least one 'to' recipient")
	}
	for _, group := range [][]string{d.Recipients.To, d.Recipients.CC, d.Recipients.BCC} {
		for _, addr := range group {
			if !email.IsValid(addr) {
				errs = append(errs, "invalid recipient "+addr)
			}
		}
	}

	if d.TemplateID == 0 {
		errs = append(errs, "select a template")
	}

	if d.Repeat {
		if !slices.Contains(RepeatFrequencies, d.RepeatFrequency) {
			errs = append(errs, "repeat frequency must be one of "+strings.Join(RepeatFrequencies, ", "))
		}
		if d.RepeatEndsOn == RepeatEndsOn {
			if d.RepeatEndDate == "" {
				errs = append(errs, "select a repeat end date or choose 'never'")
			} else if _, err := time.Parse("2006-01-02", d.RepeatEndDate); err != nil {
				errs = append(errs, "repeat end date must be YYYY-MM-DD")
			}
		}
	}

	return errs.orNil()
}

// Payload builds the create request. Repeat settings are sent as null
// unless the campaign repeats; the end date only when it ends on a date.
func (d CampaignDraft) Payload() CampaignPayload {
	status := d.Status
	if status == "" {
		status = CampaignStatusPublished
	}

	p := CampaignPayload{
		Name:           strings.TrimSpace(d.Name),
		Channel:        strings.Join(d.Channels, ","),
		Status:         status,
		StartDate:      d.StartDate.UTC().Format(time.RFC3339),
		Repeat:         d.Repeat,
		AudienceListID: d.AudienceListID,
		Recipients:     normalizeRecipients(d.Recipients),
		TemplateID:     d.TemplateID,
		EmailFrom:      strings.TrimSpace(d.EmailFrom),
	}

	if d.Repeat {
		freq := d.RepeatFrequency
		endsOn := d.RepeatEndsOn
		if endsOn == "" {
			endsOn = RepeatEndsNever
		}
		p.RepeatFrequency = &freq
		p.RepeatEndsOn = &endsOn
		if endsOn == RepeatEndsOn {
			end := d.RepeatEndDate
			p.RepeatEndDate = &end
		}
	}

	return p
}

// SanitizeEmails splits a comma separated address field, trimming blanks
func SanitizeEmails(input string) []string {
	out := []string{}
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeRecipients(r Recipients) Recipients {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return Recipients{To: orEmpty(r.To), CC: orEmpty(r.CC), BCC: orEmpty(r.BCC)}
}
