package steps

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrSkippedRow marks a record with no usable identity key. Skipped rows are
// counted and dropped; they are never failures.
var ErrSkippedRow = errors.New("row has no usable email")

// RawRow is one tabular record keyed by column header, exactly as the export
// transport produced it.
type RawRow map[string]string

// Row is the normalized, typed form of one export record. Every score field
// is a pointer: nil means the column was missing or unparsable, while an
// explicit 0 in the export stays a non-nil 0.
type Row struct {
	Email     string
	FirstName string
	LastName  string
	Country   *string
	Language  *string
	TakenAt   *time.Time

	Competencies map[string]*float64
	Subfactors   map[string]*float64
	Outcomes     map[string]*float64
	Talents      map[string]*float64

	YearOfBirth *int
	Gender      *string
	JobRole     *string
	Sector      *string
	Consent     bool
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// NormalizeRow turns one raw record into a typed Row. Malformed numeric or
// date values degrade to nil; only a missing email rejects the row.
func NormalizeRow(raw RawRow) (*Row, error) {
	email := normalizeEmail(raw[ColEmail])
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrSkippedRow
	}

	row := &Row{
		Email:        email,
		FirstName:    strings.TrimSpace(raw[ColFirstName]),
		LastName:     strings.TrimSpace(raw[ColLastName]),
		Country:      optString(raw[ColCountry]),
		Language:     optString(raw[ColLanguage]),
		TakenAt:      parseDate(raw[ColAssessmentDate]),
		Competencies: map[string]*float64{},
		Subfactors:   map[string]*float64{},
		Outcomes:     map[string]*float64{},
		Talents:      map[string]*float64{},
		YearOfBirth:  parseInt(raw[ColYearOfBirth]),
		Gender:       optString(raw[ColGender]),
		JobRole:      optString(raw[ColJobRole]),
		Sector:       optString(raw[ColSector]),
		Consent:      parseConsent(raw[ColDataConsent]),
	}

	for _, m := range CompetencyColumns {
		row.Competencies[m.Key] = parseFloat(raw[m.Column])
	}
	for _, m := range SubfactorColumns {
		row.Subfactors[m.Key] = parseFloat(raw[m.Column])
	}
	for _, m := range OutcomeColumns {
		row.Outcomes[m.Key] = parseFloat(raw[m.Column])
	}
	for _, m := range TalentColumns {
		row.Talents[m.Key] = parseFloat(raw[m.Column])
	}

	return row, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseFloat strips thousands separators before parsing; unparsable values
// become nil rather than an error.
func parseFloat(s string) *float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return nil
	}
	i, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &i
}

func parseDate(s string) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}

func parseConsent(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "agreed":
		return true
	}
	return false
}

// FullName joins the name parts the way the legacy member table stores them.
func (r *Row) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}
