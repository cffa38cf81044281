package report

import (
	"sort"

	"clubmerge/pkg/schema"
)

// Severity grades how badly a record is missing data.
type Severity string

const (
	SeveritySevere Severity = "严重"
	SeverityMinor  Severity = "一般"
	SeverityNormal Severity = "正常"
)

// DefaultRequiredFields must be present for a record to be complete.
var DefaultRequiredFields = []string{schema.FieldName, schema.FieldQQ, schema.FieldContact}

// DefaultImportantFields may be partially missing.
var DefaultImportantFields = []string{
	schema.FieldGender,
	schema.FieldAge,
	schema.FieldCollege,
	schema.FieldGrade,
	schema.FieldHometown,
	schema.FieldPolitics,
}

// DefaultMaxImportantMissing is the number of missing important fields at
// which a record stops being complete.
const DefaultMaxImportantMissing = 3

// Checker evaluates the completeness of roster records.
type Checker struct {
	Required            []string
	Important           []string
	MaxImportantMissing int
}

// NewChecker returns a checker with the default field lists.
func NewChecker() *Checker {
	return &Checker{
		Required:            DefaultRequiredFields,
		Important:           DefaultImportantFields,
		MaxImportantMissing: DefaultMaxImportantMissing,
	}
}

// RecordIssue describes the missing fields of one record.
type RecordIssue struct {
	Row              int      `json:"row"`
	Name             string   `json:"name"`
	MissingRequired  []string `json:"missingRequired,omitempty"`
	MissingImportant []string `json:"missingImportant,omitempty"`
	Severity         Severity `json:"severity"`
	Complete         bool     `json:"complete"`
}

// MissingCount returns the total number of missing checked fields.
func (r RecordIssue) MissingCount() int {
	return len(r.MissingRequired) + len(r.MissingImportant)
}

// FieldMissing is the missing count of one checked field.
type FieldMissing struct {
	Field    string  `json:"field"`
	Required bool    `json:"required"`
	Missing  int     `json:"missing"`
	Rate     float64 `json:"rate"`
}

// Completeness is the outcome of checking a whole table.
type Completeness struct {
	Total          int              `json:"total"`
	Complete       int              `json:"complete"`
	Incomplete     int              `json:"incomplete"`
	CompletionRate float64          `json:"completionRate"`
	BySeverity     map[Severity]int `json:"bySeverity"`
	Fields         []FieldMissing   `json:"fields"`
	// Issues lists incomplete records, most missing fields first.
	Issues []RecordIssue `json:"issues"`
}

// CheckRecord evaluates one record.
//   - any required field missing = 严重, incomplete
//   - important fields missing = 一般, incomplete once MaxImportantMissing are missing
//   - nothing missing = 正常
func (c *Checker) CheckRecord(row schema.MemberRow) RecordIssue {
	issue := RecordIssue{Name: row.Get(schema.FieldName)}
	for _, f := range c.Required {
		if schema.IsEmptyValue(row.Get(f)) {
			issue.MissingRequired = append(issue.MissingRequired, f)
		}
	}
	for _, f := range c.Important {
		if schema.IsEmptyValue(row.Get(f)) {
			issue.MissingImportant = append(issue.MissingImportant, f)
		}
	}

	limit := c.MaxImportantMissing
	if limit <= 0 {
		limit = DefaultMaxImportantMissing
	}
	issue.Complete = len(issue.MissingRequired) == 0 && len(issue.MissingImportant) < limit

	switch {
	case len(issue.MissingRequired) > 0:
		issue.Severity = SeveritySevere
	case len(issue.MissingImportant) > 0:
		issue.Severity = SeverityMinor
	default:
		issue.Severity = SeverityNormal
	}
	return issue
}

// Check evaluates every row of t.
func (c *Checker) Check(t *schema.Table) *Completeness {
	out := &Completeness{
		Total:      t.Len(),
		BySeverity: make(map[Severity]int),
	}
	missing := make(map[string]int)

	for i := 0; i < t.Len(); i++ {
		issue := c.CheckRecord(t.Rows[i])
		issue.Row = i
		out.BySeverity[issue.Severity]++
		for _, f := range issue.MissingRequired {
			missing[f]++
		}
		for _, f := range issue.MissingImportant {
			missing[f]++
		}
		if issue.Complete {
			out.Complete++
			continue
		}
		out.Incomplete++
		out.Issues = append(out.Issues, issue)
	}

	if out.Total > 0 {
		out.CompletionRate = float64(out.Complete) / float64(out.Total)
	}
	for _, f := range c.Required {
		out.Fields = append(out.Fields, c.fieldMissing(f, true, missing[f], out.Total))
	}
	for _, f := range c.Important {
		out.Fields = append(out.Fields, c.fieldMissing(f, false, missing[f], out.Total))
	}
	sort.SliceStable(out.Issues, func(i, j int) bool {
		return out.Issues[i].MissingCount() > out.Issues[j].MissingCount()
	})
	return out
}

func (c *Checker) fieldMissing(field string, required bool, n, total int) FieldMissing {
	fm := FieldMissing{Field: field, Required: required, Missing: n}
	if total > 0 {
		fm.Rate = float64(n) / float64(total)
	}
	return fm
}
