package schema

import "sort"

// Canonical column names shared by extraction, merging and reporting.
const (
	FieldName      = "姓名"
	FieldContact   = "联系方式"
	FieldQQ        = "QQ号"
	FieldClub      = "社团"
	FieldClubs     = "加入社团"
	FieldClubCount = "参加社团数量"
	FieldGrade     = "年级专业层次班级"
	FieldCollege   = "学院"
	FieldGender    = "性别"
	FieldAge       = "年龄"
	FieldHometown  = "籍贯"
	FieldPolitics  = "政治面貌"
	FieldReligion  = "宗教信仰"
	FieldWeChat    = "微信号"
	FieldSerial    = "序号"
	FieldSource    = "来源文件"
)

// CanonicalColumns is the column order of an extracted roster. Columns that
// the header mapping does not recognise follow in first-seen order.
var CanonicalColumns = []string{
	FieldName,
	FieldClub,
	FieldQQ,
	FieldContact,
	FieldGrade,
	FieldCollege,
	FieldGender,
	FieldAge,
	FieldHometown,
	FieldPolitics,
	FieldReligion,
	FieldWeChat,
	FieldSource,
}

// DefaultKeyFields are the identity key fields used for grouping.
var DefaultKeyFields = []string{FieldName, FieldContact, FieldQQ}

// MemberRow is one raw roster observation keyed by column name.
// Rows are treated as immutable once they are part of a Table.
type MemberRow map[string]string

// Get returns the raw cell for col, or "" when the row has no such cell.
func (r MemberRow) Get(col string) string {
	return r[col]
}

// Clone returns a shallow copy that may be modified freely.
func (r MemberRow) Clone() MemberRow {
	out := make(MemberRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is a row-oriented roster with a stable column order.
type Table struct {
	Columns []string    `json:"columns"`
	Rows    []MemberRow `json:"rows"`
}

// NewTable returns an empty table with the given column order.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether col is part of the table schema.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Append adds a row, extending the schema with any columns the table has not
// seen yet. New columns are added in sorted order so that the schema does not
// depend on map iteration.
func (t *Table) Append(row MemberRow) {
	var missing []string
	for col := range row {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	t.Columns = append(t.Columns, missing...)
	t.Rows = append(t.Rows, row)
}

// AddColumns extends the schema with any of cols it lacks, keeping their order.
func (t *Table) AddColumns(cols ...string) {
	for _, col := range cols {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
	}
}

// Column returns the raw values of col in row order.
func (t *Table) Column(col string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Get(col)
	}
	return out
}
