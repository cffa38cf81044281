package engine

import (
	"clubmerge/pkg/schema"
)

// Stats summarises a merge run for the reporting stage.
type Stats struct {
	RowsBefore         int     `json:"rowsBefore"`
	RowsAfter          int     `json:"rowsAfter"`
	ReducedRows        int     `json:"reducedRows"`
	CompressionRate    float64 `json:"compressionRate"`
	TotalGroups        int     `json:"totalGroups"`
	MergedGroups       int     `json:"mergedGroups"`
	RowsInMergedGroups int     `json:"rowsInMergedGroups"`
	LargestGroup       int     `json:"largestGroup"`
	Conflicts          int     `json:"conflicts"`
	// ConflictsByField counts recorded conflicts per field.
	ConflictsByField map[string]int `json:"conflictsByField"`
	// LinksByField counts merged groups in which each key field produced a link.
	LinksByField     map[string]int `json:"linksByField"`
	MultiClubMembers int            `json:"multiClubMembers"`
	YearFixes        int            `json:"yearFixes"`
	// Completeness is the share of merged rows with a value, per output column.
	Completeness map[string]float64 `json:"completeness"`
	// RemainingDuplicates counts merged rows whose contact / QQ value already
	// appeared on an earlier merged row.
	RemainingDuplicates map[string]int `json:"remainingDuplicates"`
}

// Analyze computes aggregate statistics over a merge result. It has no side
// effects on either argument.
func Analyze(original *schema.Table, res *Result) Stats {
	st := Stats{
		RowsBefore:          original.Len(),
		RowsAfter:           len(res.Members),
		TotalGroups:         len(res.Groups),
		Conflicts:           len(res.Conflicts),
		ConflictsByField:    make(map[string]int),
		LinksByField:        make(map[string]int),
		Completeness:        make(map[string]float64),
		RemainingDuplicates: make(map[string]int),
	}
	st.ReducedRows = st.RowsBefore - st.RowsAfter
	if st.RowsBefore > 0 {
		st.CompressionRate = float64(st.ReducedRows) / float64(st.RowsBefore)
	}

	for _, g := range res.Groups {
		if g.Size() > st.LargestGroup {
			st.LargestGroup = g.Size()
		}
		if g.Size() < 2 {
			continue
		}
		st.MergedGroups++
		st.RowsInMergedGroups += g.Size()
		for _, f := range g.LinkedBy {
			st.LinksByField[f]++
		}
	}

	for _, c := range res.Conflicts {
		st.ConflictsByField[c.Field]++
	}
	for _, n := range res.YearFixes {
		st.YearFixes += n
	}

	seen := map[string]map[string]bool{
		res.Options.ContactField: {},
		res.Options.QQField:      {},
	}
	for _, mem := range res.Members {
		if len(mem.Clubs) >= 2 {
			st.MultiClubMembers++
		}
		for field, v := range map[string]string{res.Options.ContactField: mem.Contact, res.Options.QQField: mem.QQ} {
			if v == "" {
				continue
			}
			if seen[field][v] {
				st.RemainingDuplicates[field]++
			}
			seen[field][v] = true
		}
	}

	if len(res.Members) > 0 {
		filled := make(map[string]int, len(res.Columns))
		for _, mem := range res.Members {
			for col, v := range res.Row(mem) {
				if v != "" {
					filled[col]++
				}
			}
		}
		for _, col := range res.Columns {
			st.Completeness[col] = float64(filled[col]) / float64(len(res.Members))
		}
	}

	return st
}
