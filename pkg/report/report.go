package report

import (
	"sort"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/schema"
	"clubmerge/pkg/yearfmt"
)

// Summary holds the headline numbers of a merge run.
type Summary struct {
	RunID              string    `json:"runId"`
	GeneratedAt        time.Time `json:"generatedAt"`
	RowsBefore         int       `json:"rowsBefore"`
	RowsAfter          int       `json:"rowsAfter"`
	ReducedRows        int       `json:"reducedRows"`
	CompressionRate    float64   `json:"compressionRate"`
	MergedGroups       int       `json:"mergedGroups"`
	RowsInMergedGroups int       `json:"rowsInMergedGroups"`
	LargestGroup       int       `json:"largestGroup"`
	Conflicts          int       `json:"conflicts"`
	MultiClubMembers   int       `json:"multiClubMembers"`
	YearFixes          int       `json:"yearFixes"`
	// NonStandardGrades counts members whose grade still does not start
	// with a 20xx级 cohort after repair.
	NonStandardGrades int `json:"nonStandardGrades"`
}

// ClubCount is the number of merged members in one club.
type ClubCount struct {
	Club    string `json:"club"`
	Members int    `json:"members"`
}

// MultiClubEntry is a member who belongs to two or more clubs.
type MultiClubEntry struct {
	Name      string   `json:"name"`
	Contact   string   `json:"contact"`
	QQ        string   `json:"qq"`
	Clubs     []string `json:"clubs"`
	ClubCount int      `json:"clubCount"`
}

// Report is the compiled output handed to the writers.
type Report struct {
	Summary      Summary                `json:"summary"`
	Columns      []string               `json:"columns"`
	Rows         []schema.MemberRow     `json:"rows"`
	MultiClub    []MultiClubEntry       `json:"multiClub"`
	Clubs        []ClubCount            `json:"clubs"`
	Conflicts    []engine.FieldConflict `json:"conflicts"`
	Completeness *Completeness          `json:"completeness,omitempty"`
	Stats        engine.Stats           `json:"stats"`

	result *engine.Result
}

// Compile builds a report from a merge result. Members keep the order of
// their first source row; multi-club members are ordered by club count,
// then by the pinyin of their name. comp may be nil.
func Compile(res *engine.Result, comp *Completeness) *Report {
	st := res.Stats
	rep := &Report{
		Summary: Summary{
			RunID:              res.RunID,
			GeneratedAt:        time.Now(),
			RowsBefore:         st.RowsBefore,
			RowsAfter:          st.RowsAfter,
			ReducedRows:        st.ReducedRows,
			CompressionRate:    st.CompressionRate,
			MergedGroups:       st.MergedGroups,
			RowsInMergedGroups: st.RowsInMergedGroups,
			LargestGroup:       st.LargestGroup,
			Conflicts:          st.Conflicts,
			MultiClubMembers:   st.MultiClubMembers,
			YearFixes:          st.YearFixes,
		},
		Columns:      res.Columns,
		Conflicts:    res.Conflicts,
		Completeness: comp,
		Stats:        st,
		result:       res,
	}

	clubs := make(map[string]int)
	var clubOrder []string
	grade := res.Options.GradeField
	for _, mem := range res.Members {
		rep.Rows = append(rep.Rows, res.Row(mem))
		if grade != "" {
			if v, ok := mem.Fields[grade]; ok && v != "" && !yearfmt.IsStandard(v) {
				rep.Summary.NonStandardGrades++
			}
		}
		for _, c := range mem.Clubs {
			if _, ok := clubs[c]; !ok {
				clubOrder = append(clubOrder, c)
			}
			clubs[c]++
		}
		if len(mem.Clubs) >= 2 {
			rep.MultiClub = append(rep.MultiClub, MultiClubEntry{
				Name:      mem.Name,
				Contact:   mem.Contact,
				QQ:        mem.QQ,
				Clubs:     mem.Clubs,
				ClubCount: len(mem.Clubs),
			})
		}
	}

	keys := make(map[string]string, len(rep.MultiClub))
	for _, e := range rep.MultiClub {
		keys[e.Name] = pinyinKey(e.Name)
	}
	sort.SliceStable(rep.MultiClub, func(i, j int) bool {
		a, b := rep.MultiClub[i], rep.MultiClub[j]
		if a.ClubCount != b.ClubCount {
			return a.ClubCount > b.ClubCount
		}
		return keys[a.Name] < keys[b.Name]
	})

	for _, c := range clubOrder {
		rep.Clubs = append(rep.Clubs, ClubCount{Club: c, Members: clubs[c]})
	}
	sort.SliceStable(rep.Clubs, func(i, j int) bool {
		return rep.Clubs[i].Members > rep.Clubs[j].Members
	})
	return rep
}

// Result returns the merge result the report was compiled from.
func (r *Report) Result() *engine.Result {
	return r.result
}

// Table returns the merged rows as a table.
func (r *Report) Table() *schema.Table {
	t := schema.NewTable(r.Columns)
	t.Rows = r.Rows
	return t
}

// pinyinKey is the sort key of a name: toneless pinyin syllables, with
// non-Han runes kept as they are.
func pinyinKey(name string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.NORMAL
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}
	return strings.Join(pinyin.LazyConvert(name, &args), " ")
}
