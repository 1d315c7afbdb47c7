package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the stage an application is in. The set is closed: anything
// else is rejected at the boundary.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusAccepted  Status = "Accepted"
	StatusRejected  Status = "Rejected"
)

// StatusOrder is the fixed display order the UI renders charts in.
var StatusOrder = []Status{
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusAccepted,
	StatusRejected,
}

// DateLayout is how date_applied is stored and exchanged.
const DateLayout = "2006-01-02"

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseStatus accepts the canonical form case-insensitively.
func ParseStatus(raw string) (Status, error) {
	t := strings.TrimSpace(raw)
	for _, s := range StatusOrder {
		if strings.EqualFold(t, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Application is one tracked job application.
type Application struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	DateApplied string    `json:"dateApplied"` // "2006-01-02"
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	SourceID    string    `json:"-"` // dedup key for auto-created records (email poll)
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidateNew checks the fields a caller must supply at creation.
// ID and UpdatedAt are assigned by the store.
func (a Application) ValidateNew() error {
	var errs []string
	if strings.TrimSpace(a.Company) == "" {
		errs = append(errs, "company is required")
	}
	if strings.TrimSpace(a.Role) == "" {
		errs = append(errs, "role is required")
	}
	if strings.TrimSpace(a.DateApplied) == "" {
		errs = append(errs, "dateApplied is required")
	} else if _, err := time.Parse(DateLayout, a.DateApplied); err != nil {
		errs = append(errs, fmt.Sprintf("dateApplied %q is not a valid date (want %s)", a.DateApplied, DateLayout))
	}
	if !a.Status.Valid() {
		errs = append(errs, fmt.Sprintf("status %q is not one of the known stages", a.Status))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
