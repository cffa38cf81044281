package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubmerge/pkg/schema"
)

func conflictFor(m MergedMember, field string) *FieldConflict {
	for i := range m.Conflicts {
		if m.Conflicts[i].Field == field {
			return &m.Conflicts[i]
		}
	}
	return nil
}

func TestRecordMerger_ClubUnion(t *testing.T) {
	rows := []schema.MemberRow{
		{schema.FieldName: "张三", schema.FieldClub: "棋协"},
		{schema.FieldName: "张三", schema.FieldClub: "篮协、棋协"},
		{schema.FieldName: "张三", schema.FieldClub: " 书法社 "},
		{schema.FieldName: "张三", schema.FieldClub: ""},
	}
	m := NewRecordMerger().MergeRows(rows, []int{0, 1, 2, 3}, []string{schema.FieldName, schema.FieldClub})

	assert.Equal(t, []string{"棋协", "篮协", "书法社"}, m.Clubs)
	assert.Empty(t, m.Conflicts)
}

func TestRecordMerger_NameMostFrequent(t *testing.T) {
	rows := []schema.MemberRow{
		{schema.FieldName: "李四"},
		{schema.FieldName: "张 三"},
		{schema.FieldName: "张三"},
	}
	m := NewRecordMerger().MergeRows(rows, []int{4, 7, 9}, []string{schema.FieldName})
	assert.Equal(t, "张三", m.Name)

	c := conflictFor(m, schema.FieldName)
	require.NotNil(t, c)
	assert.Equal(t, "张三", c.Kept)
	assert.Equal(t, []string{"李四"}, c.Discarded)
	assert.Equal(t, []int{4, 7, 9}, c.Rows)
	assert.Equal(t, ResolutionMostFrequent, c.Resolution)
}

func TestRecordMerger_NameTieKeepsFirst(t *testing.T) {
	rows := []schema.MemberRow{
		{schema.FieldName: "李四"},
		{schema.FieldName: "张三"},
		{schema.FieldName: "张三"},
		{schema.FieldName: "李四"},
	}
	m := NewRecordMerger().MergeRows(rows, []int{0, 1, 2, 3}, []string{schema.FieldName})
	assert.Equal(t, "李四", m.Name)
}

func TestRecordMerger_FirstNonEmptyWins(t *testing.T) {
	rows := []schema.MemberRow{
		{schema.FieldName: "张三", schema.FieldContact: "", schema.FieldQQ: "10001.0", schema.FieldCollege: ""},
		{schema.FieldName: "张三", schema.FieldContact: "138 0013 8000", schema.FieldQQ: "10001", schema.FieldCollege: "计算机学院"},
		{schema.FieldName: "张三", schema.FieldContact: "13900139000", schema.FieldQQ: "", schema.FieldCollege: "数学学院"},
	}
	cols := []string{schema.FieldName, schema.FieldContact, schema.FieldQQ, schema.FieldCollege}
	m := NewRecordMerger().MergeRows(rows, []int{0, 1, 2}, cols)

	assert.Equal(t, "13800138000", m.Contact)
	assert.Equal(t, "10001", m.QQ)
	assert.Equal(t, "计算机学院", m.Field(schema.FieldCollege))

	c := conflictFor(m, schema.FieldContact)
	require.NotNil(t, c)
	assert.Equal(t, []string{"13900139000"}, c.Discarded)
	assert.Equal(t, ResolutionFirstNonEmpty, c.Resolution)

	assert.Nil(t, conflictFor(m, schema.FieldQQ))
	require.NotNil(t, conflictFor(m, schema.FieldCollege))
	assert.Equal(t, []string{"数学学院"}, conflictFor(m, schema.FieldCollege).Discarded)
}

func TestRecordMerger_ListFields(t *testing.T) {
	rows := []schema.MemberRow{
		{schema.FieldName: "张三", schema.FieldSource: "棋协.xlsx"},
		{schema.FieldName: "张三", schema.FieldSource: "篮协.xlsx"},
		{schema.FieldName: "张三", schema.FieldSource: "棋协.xlsx"},
	}
	m := NewRecordMerger().MergeRows(rows, []int{0, 1, 2}, []string{schema.FieldName, schema.FieldSource})
	assert.Equal(t, []string{"棋协.xlsx", "篮协.xlsx"}, m.Lists[schema.FieldSource])
	assert.NotContains(t, m.Fields, schema.FieldSource)
	assert.Empty(t, m.Conflicts)
}

func TestRecordMerger_DoesNotModifyRows(t *testing.T) {
	rows := []schema.MemberRow{
		{schema.FieldName: " 张三 ", schema.FieldContact: "138-0013-8000"},
	}
	before := rows[0].Clone()
	NewRecordMerger().MergeRows(rows, []int{0}, []string{schema.FieldName, schema.FieldContact})
	assert.Equal(t, before, rows[0])
}
