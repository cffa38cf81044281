package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"clubmerge/pkg/schema"
	"clubmerge/pkg/yearfmt"
)

// Options configure a merge run. Every field name refers to a column of the
// input table.
type Options struct {
	KeyFields    []string
	NameField    string
	ContactField string
	QQField      string
	ClubField    string
	// ClubsField is the output column holding the joined club list.
	ClubsField string
	ListFields []string
	// GradeField is repaired with Years after merging. Skipped when the
	// input has no such column or Years is nil.
	GradeField string
	Contact    schema.ContactRange
	Years      *yearfmt.Formatter
	Logger     *zap.Logger
}

// DefaultOptions returns options for the canonical roster columns.
func DefaultOptions() Options {
	return Options{
		KeyFields:    append([]string(nil), schema.DefaultKeyFields...),
		NameField:    schema.FieldName,
		ContactField: schema.FieldContact,
		QQField:      schema.FieldQQ,
		ClubField:    schema.FieldClub,
		ClubsField:   schema.FieldClubs,
		ListFields:   []string{schema.FieldSource},
		GradeField:   schema.FieldGrade,
		Contact:      schema.DefaultContactRange,
		Years:        yearfmt.Default(),
	}
}

// ListSeparator joins list-valued cells in rendered tables.
const ListSeparator = ", "

// Result is the outcome of one merge run.
type Result struct {
	RunID     string          `json:"runId"`
	Columns   []string        `json:"columns"`
	Groups    []MergeGroup    `json:"groups"`
	Members   []MergedMember  `json:"members"`
	Conflicts []FieldConflict `json:"conflicts"`
	// YearFixes counts grade repairs per rule name.
	YearFixes map[string]int `json:"yearFixes,omitempty"`
	Stats     Stats          `json:"stats"`
	Options   ResultFields   `json:"fields"`
}

// ResultFields records the column names a result was produced with, so a
// deserialized result renders the same table.
type ResultFields struct {
	KeyFields    []string `json:"keyFields"`
	NameField    string   `json:"nameField"`
	ContactField string   `json:"contactField"`
	QQField      string   `json:"qqField"`
	ClubField    string   `json:"clubField"`
	ClubsField   string   `json:"clubsField"`
	ListFields   []string `json:"listFields"`
	GradeField   string   `json:"gradeField"`
}

// Merger runs normalization, grouping, merging, grade repair and analysis
// over one table.
type Merger struct {
	opts   Options
	log    *zap.Logger
	record *RecordMerger
}

// NewMerger returns a merger; zero-valued column names fall back to the
// canonical ones.
func NewMerger(opts Options) *Merger {
	def := DefaultOptions()
	if opts.NameField == "" {
		opts.NameField = def.NameField
	}
	if opts.ContactField == "" {
		opts.ContactField = def.ContactField
	}
	if opts.QQField == "" {
		opts.QQField = def.QQField
	}
	if opts.ClubField == "" {
		opts.ClubField = def.ClubField
	}
	if opts.ClubsField == "" {
		opts.ClubsField = def.ClubsField
	}
	if opts.Contact.MaxDigits == 0 {
		opts.Contact = def.Contact
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{
		opts: opts,
		log:  log.Named("merge"),
		record: &RecordMerger{
			NameField:    opts.NameField,
			ContactField: opts.ContactField,
			QQField:      opts.QQField,
			ClubField:    opts.ClubField,
			ListFields:   opts.ListFields,
			Contact:      opts.Contact,
		},
	}
}

// Run merges table into one row per person. The input table is not modified.
func (m *Merger) Run(table *schema.Table) (*Result, error) {
	if table == nil {
		table = &schema.Table{}
	}
	res := &Result{
		RunID:   uuid.NewString(),
		Options: m.fields(),
	}
	if len(table.Columns) == 0 && table.Len() == 0 {
		res.Stats = Analyze(table, res)
		return res, nil
	}
	if !table.HasColumn(m.opts.ClubField) {
		return nil, eris.Wrapf(ErrUnknownField, "club field %q", m.opts.ClubField)
	}

	t0 := time.Now()
	log := m.log.With(zap.String("run_id", res.RunID))
	log.Info("merge start", zap.Int("rows", table.Len()), zap.Strings("key_fields", m.opts.KeyFields))

	index, err := BuildKeyIndex(table, m.opts.KeyFields, m.normalizers())
	if err != nil {
		log.Error("merge failed", zap.Error(err))
		return nil, err
	}
	res.Groups = GroupsFromIndex(index)
	res.Columns = m.outputColumns(table.Columns)

	repairGrades := m.opts.Years != nil && m.opts.GradeField != "" && table.HasColumn(m.opts.GradeField)
	for gi, g := range res.Groups {
		member := m.record.MergeGroup(table, g)
		for i := range member.Conflicts {
			member.Conflicts[i].Group = gi
			log.Debug("field conflict",
				zap.Int("group", gi),
				zap.String("field", member.Conflicts[i].Field),
				zap.String("kept", member.Conflicts[i].Kept),
				zap.Strings("discarded", member.Conflicts[i].Discarded))
		}
		if repairGrades {
			fixed, applied := m.opts.Years.Explain(member.Fields[m.opts.GradeField])
			member.Fields[m.opts.GradeField] = fixed
			for _, name := range applied {
				if res.YearFixes == nil {
					res.YearFixes = make(map[string]int)
				}
				res.YearFixes[name]++
			}
		}
		if g.Size() > 1 {
			log.Debug("group merged",
				zap.Int("group", gi),
				zap.Ints("rows", g.Rows),
				zap.Strings("linked_by", g.LinkedBy),
				zap.Strings("clubs", member.Clubs))
		}
		res.Members = append(res.Members, member)
		res.Conflicts = append(res.Conflicts, member.Conflicts...)
	}

	res.Stats = Analyze(table, res)
	log.Info("merge finish",
		zap.Int64("dur_ms", time.Since(t0).Milliseconds()),
		zap.Int("rows_before", res.Stats.RowsBefore),
		zap.Int("rows_after", res.Stats.RowsAfter),
		zap.Int("merged_groups", res.Stats.MergedGroups),
		zap.Int("conflicts", res.Stats.Conflicts),
		zap.Int("no_identity_rows", index.Stats.NoIdentity))
	return res, nil
}

func (m *Merger) normalizers() Normalizers {
	n := DefaultNormalizers(m.opts.Contact)
	n[m.opts.NameField] = schema.NormalizeName
	n[m.opts.ContactField] = m.opts.Contact.Normalize
	n[m.opts.QQField] = schema.NormalizeQQ
	return n
}

func (m *Merger) fields() ResultFields {
	return ResultFields{
		KeyFields:    append([]string(nil), m.opts.KeyFields...),
		NameField:    m.opts.NameField,
		ContactField: m.opts.ContactField,
		QQField:      m.opts.QQField,
		ClubField:    m.opts.ClubField,
		ClubsField:   m.opts.ClubsField,
		ListFields:   append([]string(nil), m.opts.ListFields...),
		GradeField:   m.opts.GradeField,
	}
}

// outputColumns replaces the club column with the joined club list and
// appends the club count. Input columns named like either derived column
// are dropped.
func (m *Merger) outputColumns(in []string) []string {
	out := make([]string, 0, len(in)+2)
	placed := false
	for _, c := range in {
		switch c {
		case m.opts.ClubField:
			if !placed {
				out = append(out, m.opts.ClubsField)
				placed = true
			}
		case m.opts.ClubsField, schema.FieldClubCount:
		default:
			out = append(out, c)
		}
	}
	if !placed {
		out = append([]string{m.opts.ClubsField}, out...)
	}
	return append(out, schema.FieldClubCount)
}

// Table renders the merged members as a row-oriented table.
func (r *Result) Table() *schema.Table {
	t := schema.NewTable(r.Columns)
	for _, mem := range r.Members {
		t.Rows = append(t.Rows, r.Row(mem))
	}
	return t
}

// Row renders one member under the result's output columns.
func (r *Result) Row(mem MergedMember) schema.MemberRow {
	f := r.Options
	row := make(schema.MemberRow, len(r.Columns))
	for _, c := range r.Columns {
		switch c {
		case f.NameField:
			row[c] = mem.Name
		case f.ContactField:
			row[c] = mem.Contact
		case f.QQField:
			row[c] = mem.QQ
		case f.ClubsField:
			row[c] = strings.Join(mem.Clubs, ListSeparator)
		case schema.FieldClubCount:
			row[c] = strconv.Itoa(len(mem.Clubs))
		default:
			if vals, ok := mem.Lists[c]; ok {
				row[c] = strings.Join(vals, ListSeparator)
			} else {
				row[c] = mem.Fields[c]
			}
		}
	}
	return row
}
