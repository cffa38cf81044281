package engine

import (
	"strings"

	"clubmerge/pkg/schema"
)

// MergedMember is the single output row of one MergeGroup.
type MergedMember struct {
	Name    string   `json:"name"`
	Contact string   `json:"contact"`
	QQ      string   `json:"qq"`
	Clubs   []string `json:"clubs"`
	// Fields holds every other scalar column, first non-empty value wins.
	Fields map[string]string `json:"fields,omitempty"`
	// Lists holds list-valued columns other than the club column.
	Lists      map[string][]string `json:"lists,omitempty"`
	SourceRows []int               `json:"sourceRows"`
	Conflicts  []FieldConflict     `json:"conflicts,omitempty"`
}

// Field returns the merged value of col.
func (m MergedMember) Field(col string) string {
	return m.Fields[col]
}

// RecordMerger collapses the rows of one group into a MergedMember.
//
// Name: most frequent normalized name, ties broken by first occurrence.
// Contact, QQ and every other scalar: first non-empty value in row order.
// Clubs and list fields: union of all values, first-seen order.
// Disagreements are recorded as FieldConflicts, never returned as errors.
type RecordMerger struct {
	NameField    string
	ContactField string
	QQField      string
	ClubField    string
	ListFields   []string
	Contact      schema.ContactRange
}

// NewRecordMerger returns a merger for the canonical column names.
func NewRecordMerger() *RecordMerger {
	return &RecordMerger{
		NameField:    schema.FieldName,
		ContactField: schema.FieldContact,
		QQField:      schema.FieldQQ,
		ClubField:    schema.FieldClub,
		ListFields:   []string{schema.FieldSource},
		Contact:      schema.DefaultContactRange,
	}
}

// MergeGroup merges the rows of group taken from table.
func (m *RecordMerger) MergeGroup(table *schema.Table, group MergeGroup) MergedMember {
	rows := make([]schema.MemberRow, len(group.Rows))
	for i, r := range group.Rows {
		rows[i] = table.Rows[r]
	}
	return m.MergeRows(rows, group.Rows, table.Columns)
}

// MergeRows merges rows into one member. ids are the original row indices of
// rows and columns is the input schema. The input rows are not modified.
func (m *RecordMerger) MergeRows(rows []schema.MemberRow, ids []int, columns []string) MergedMember {
	member := MergedMember{
		Fields:     make(map[string]string),
		SourceRows: append([]int(nil), ids...),
	}

	names := m.column(rows, m.NameField, schema.NormalizeName)
	member.Name = mostFrequent(names)
	member.addConflict(detectConflict(m.NameField, names, ids, member.Name, ResolutionMostFrequent))

	contacts := m.column(rows, m.ContactField, m.Contact.Normalize)
	member.Contact = firstNonEmpty(contacts)
	member.addConflict(detectConflict(m.ContactField, contacts, ids, member.Contact, ResolutionFirstNonEmpty))

	qqs := m.column(rows, m.QQField, schema.NormalizeQQ)
	member.QQ = firstNonEmpty(qqs)
	member.addConflict(detectConflict(m.QQField, qqs, ids, member.QQ, ResolutionFirstNonEmpty))

	member.Clubs = unionList(rows, m.ClubField)
	for _, f := range m.ListFields {
		if vals := unionList(rows, f); len(vals) > 0 {
			if member.Lists == nil {
				member.Lists = make(map[string][]string)
			}
			member.Lists[f] = vals
		}
	}

	for _, col := range columns {
		if m.reserved(col) {
			continue
		}
		vals := m.column(rows, col, trimCell)
		kept := firstNonEmpty(vals)
		member.Fields[col] = kept
		member.addConflict(detectConflict(col, vals, ids, kept, ResolutionFirstNonEmpty))
	}

	return member
}

func (m *MergedMember) addConflict(c *FieldConflict) {
	if c != nil {
		m.Conflicts = append(m.Conflicts, *c)
	}
}

func (m *RecordMerger) reserved(col string) bool {
	switch col {
	case m.NameField, m.ContactField, m.QQField, m.ClubField:
		return true
	}
	for _, f := range m.ListFields {
		if f == col {
			return true
		}
	}
	return false
}

func (m *RecordMerger) column(rows []schema.MemberRow, col string, norm func(string) string) []string {
	out := make([]string, len(rows))
	if col == "" {
		return out
	}
	for i, row := range rows {
		out[i] = norm(row.Get(col))
	}
	return out
}

func trimCell(s string) string {
	if schema.IsEmptyValue(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func mostFrequent(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	best, bestN := "", 0
	for _, v := range values {
		if v != "" && counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

// unionList collects the list values of col across rows, deduplicated in
// first-seen order.
func unionList(rows []schema.MemberRow, col string) []string {
	if col == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		for _, v := range schema.SplitList(row.Get(col)) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
