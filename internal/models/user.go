package models

import (
	"strings"

	"github.com/foxzi/campaign-console/internal/email"
)

// User represents a console account
type User struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	MobileCountryCode string `json:"mobileCountryCode"`
	Mobile            string `json:"mobile"`
	Role              string `json:"role"`
}

// UserIdentity is the user returned by a successful login
type UserIdentity struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Credentials are sent to the login endpoint. Exactly one of Email or
// Mobile identifies the account.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Mobile) == "" {
		errs = append(errs, "email or mobile is required")
	}
	if c.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs.orNil()
}

// UserDraft is a user not yet created on the server
type UserDraft struct {
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	MobileCountryCode string `json:"mobileCountryCode,omitempty"`
	Mobile            string `json:"mobile,omitempty"`
	Password          string `json:"password,omitempty"`
	Role              string `json:"role,omitempty"`
}

func (d UserDraft) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(d.Email) == "" && strings.TrimSpace(d.Mobile) == "" {
		errs = append(errs, "email or mobile is required")
	}
	if d.Email != "" && !email.IsValid(d.Email) {
		errs = append(errs, "email is not a valid address")
	}
	return errs.orNil()
}
