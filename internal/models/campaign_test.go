package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func validDraft() CampaignDraft {
	return CampaignDraft{
		Name:           "Spring sale",
		Channels:       []string{ChannelEmail, ChannelSMS},
		EmailFrom:      "news@example.com",
		StartDate:      time.Date(2025, 7, 25, 10, 0, 0, 0, time.UTC),
		AudienceListID: 3,
		TemplateID:     9,
		Recipients:     Recipients{To: []string{"ops@example.com"}},
	}
}

func TestCampaignDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *CampaignDraft)
		wantErr string
	}{
		{"valid", func(d *CampaignDraft) {}, ""},
		{"no channels", func(d *CampaignDraft) { d.Channels = nil }, "select at least one channel"},
		{"unknown channel", func(d *CampaignDraft) { d.Channels = []string{"fax"} }, "unknown channel fax"},
		{"blank name", func(d *CampaignDraft) { d.Name = "  " }, "campaign name is required"},
		{"email without from", func(d *CampaignDraft) { d.EmailFrom = "" }, "email 'from' is required"},
		{"sms only without from", func(d *CampaignDraft) {
			d.Channels = []string{ChannelSMS}
			d.EmailFrom = ""
		}, ""},
		{"no start date", func(d *CampaignDraft) { d.StartDate = time.Time{} }, "start date is required"},
		{"no audience", func(d *CampaignDraft) { d.AudienceListID = 0 }, "select an audience list"},
		{"no to", func(d *CampaignDraft) { d.Recipients.To = nil }, "add at least one 'to' recipient"},
		{"bad cc", func(d *CampaignDraft) { d.Recipients.CC = []string{"nope"} }, "invalid recipient nope"},
		{"no template", func(d *CampaignDraft) { d.TemplateID = 0 }, "select a template"},
		{"repeat ends on without date", func(d *CampaignDraft) {
			d.Repeat = true
			d.RepeatFrequency = "Week"
			d.RepeatEndsOn = RepeatEndsOn
		}, "select a repeat end date"},
		{"repeat bad frequency", func(d *CampaignDraft) {
			d.Repeat = true
			d.RepeatFrequency = "Hour"
		}, "repeat frequency must be one of"},
		{"repeat never", func(d *CampaignDraft) {
			d.Repeat = true
			d.RepeatFrequency = "Day"
			d.RepeatEndsOn = RepeatEndsNever
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCampaignDraft_Payload(t *testing.T) {
	d := validDraft()
	p := d.Payload()

	if p.Channel != "email,sms" {
		t.Errorf("Channel = %q, want email,sms", p.Channel)
	}
	if p.Status != CampaignStatusPublished {
		t.Errorf("Status = %q, want default Published", p.Status)
	}
	if p.StartDate != "2025-07-25T10:00:00Z" {
		t.Errorf("StartDate = %q", p.StartDate)
	}
	if p.RepeatFrequency != nil || p.RepeatEndsOn != nil || p.RepeatEndDate != nil {
		t.Error("repeat fields should be nil when not repeating")
	}
	if p.Recipients.CC == nil || p.Recipients.BCC == nil {
		t.Error("empty recipient groups should encode as []")
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"repeatFrequency":null`) {
		t.Errorf("payload should carry explicit null repeat fields: %s", data)
	}

	d.Repeat = true
	d.RepeatFrequency = "Month"
	d.RepeatEndsOn = RepeatEndsOn
	d.RepeatEndDate = "2025-12-31"
	d.Status = CampaignStatusDraft
	p = d.Payload()
	if p.Status != CampaignStatusDraft {
		t.Errorf("Status = %q, want Draft", p.Status)
	}
	if p.RepeatFrequency == nil || *p.RepeatFrequency != "Month" {
		t.Errorf("RepeatFrequency = %v", p.RepeatFrequency)
	}
	if p.RepeatEndDate == nil || *p.RepeatEndDate != "2025-12-31" {
		t.Errorf("RepeatEndDate = %v", p.RepeatEndDate)
	}

	d.RepeatEndsOn = ""
	p = d.Payload()
	if p.RepeatEndsOn == nil || *p.RepeatEndsOn != RepeatEndsNever {
		t.Errorf("RepeatEndsOn = %v, want never", p.RepeatEndsOn)
	}
	if p.RepeatEndDate != nil {
		t.Error("RepeatEndDate should be nil when the campaign never ends")
	}
}

func TestSanitizeEmails(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"a@x.com", []string{"a@x.com"}},
		{" a@x.com , ,b@y.org,", []string{"a@x.com", "b@y.org"}},
	}

	for _, tc := range tests {
		got := SanitizeEmails(tc.input)
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("SanitizeEmails(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{`"2025-06-10"`, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
		{`"2025-07-25T10:00:00Z"`, time.Date(2025, 7, 25, 10, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}

	for _, tc := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tc.input), &ts); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tc.input, err)
		}
		if !ts.Equal(tc.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tc.input, ts.Time, tc.want)
		}
	}

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("Unmarshal should reject unknown formats")
	}
}

func TestDraftValidation(t *testing.T) {
	if err := (ListDraft{Name: " "}).Validate(); err == nil {
		t.Error("ListDraft with blank name should fail")
	}
	if err := (ListDraft{Name: "VIP"}).Validate(); err != nil {
		t.Errorf("ListDraft.Validate() error = %v", err)
	}
	if err := (TemplateDraft{Title: "Welcome", Content: "{not json"}).Validate(); err == nil {
		t.Error("TemplateDraft with broken content should fail")
	}
	if err := (TemplateDraft{Title: "Welcome", Content: `{"body":{}}`}).Validate(); err != nil {
		t.Errorf("TemplateDraft.Validate() error = %v", err)
	}
	if err := (UserDraft{Name: "Ann", Mobile: "5550100"}).Validate(); err != nil {
		t.Errorf("UserDraft.Validate() error = %v", err)
	}
	if err := (UserDraft{Name: "Ann", Email: "bad"}).Validate(); err == nil {
		t.Error("UserDraft with bad email should fail")
	}
	if err := (Credentials{Mobile: "5550100"}).Validate(); err == nil {
		t.Error("Credentials without password should fail")
	}
}
