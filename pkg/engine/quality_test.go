package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubmerge/pkg/schema"
)

func TestAnalyze(t *testing.T) {
	tbl := roster(
		[4]string{"张三", "13800138000", "10001", "棋协"},
		[4]string{"张三", "13900139000", "", "篮协"},
		[4]string{"李四", "13800138000", "", "书法社"},
		[4]string{"王五", "", "", "书法社"},
	)

	opts := DefaultOptions()
	opts.KeyFields = []string{schema.FieldName}
	res, err := NewMerger(opts).Run(tbl)
	require.NoError(t, err)

	st := Analyze(tbl, res)
	assert.Equal(t, 4, st.RowsBefore)
	assert.Equal(t, 3, st.RowsAfter)
	assert.Equal(t, 1, st.ReducedRows)
	assert.InDelta(t, 0.25, st.CompressionRate, 1e-9)
	assert.Equal(t, 3, st.TotalGroups)
	assert.Equal(t, 1, st.MergedGroups)
	assert.Equal(t, 2, st.RowsInMergedGroups)
	assert.Equal(t, 2, st.LargestGroup)
	assert.Equal(t, 1, st.Conflicts)
	assert.Equal(t, map[string]int{schema.FieldContact: 1}, st.ConflictsByField)
	assert.Equal(t, map[string]int{schema.FieldName: 1}, st.LinksByField)
	assert.Equal(t, 1, st.MultiClubMembers)

	// 张三 keeps 13800138000, which 李四 also carries.
	assert.Equal(t, 1, st.RemainingDuplicates[schema.FieldContact])
	assert.Equal(t, 0, st.RemainingDuplicates[schema.FieldQQ])

	assert.InDelta(t, 1.0, st.Completeness[schema.FieldName], 1e-9)
	assert.InDelta(t, 2.0/3.0, st.Completeness[schema.FieldContact], 1e-9)
	assert.InDelta(t, 1.0/3.0, st.Completeness[schema.FieldQQ], 1e-9)

	assert.Equal(t, res.Stats, st)
}
