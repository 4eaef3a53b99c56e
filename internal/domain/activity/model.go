package activity

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted date format. Dates are zero-padded ISO
// calendar dates so that lexical and chronological order agree; the
// relational backend sorts on the raw column.
const DateLayout = "2006-01-02"

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid activity input")

// Activity is a club event students can join.
type Activity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Subcategory string `json:"subcategory"`
	Date        string `json:"date"`
}

// WithCount is an Activity plus the number of participation rows
// referencing it, computed at query time.
type WithCount struct {
	Activity
	ParticipantCount int `json:"participantCount"`
}

// Normalize trims surrounding whitespace from every text field.
// PRE: none
// POST: fields carry no leading/trailing whitespace
func (a *Activity) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Type = strings.TrimSpace(a.Type)
	a.Subcategory = strings.TrimSpace(a.Subcategory)
	a.Date = strings.TrimSpace(a.Date)
}

// Validate checks that all fields are present and the date is YYYY-MM-DD.
// PRE: Activity struct is populated
// POST: Returns nil if valid, an error wrapping ErrInvalidInput otherwise
func (a *Activity) Validate() error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(a.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(a.Subcategory) == "" {
		missing = append(missing, "subcategory")
	}
	if strings.TrimSpace(a.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(a.Date)); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, a.Date)
	}
	return nil
}

// CompareDates orders two activity dates chronologically. Values that do not
// parse (rows written before validation existed) fall back to string order.
func CompareDates(a, b string) int {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}

// CompareNewestFirst orders by date descending, ties by id descending.
// This is the admin listing order in every backend.
func CompareNewestFirst(a, b WithCount) int {
	if c := CompareDates(b.Date, a.Date); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
