package engine

import (
	"clubmerge/pkg/schema"
)

// MergeGroup is a set of row indices judged to be one physical person.
// Rows are in ascending original order.
type MergeGroup struct {
	Rows []int `json:"rows"`
	// LinkedBy lists the key fields that produced at least one link inside
	// the group, in key field order. Empty for singletons.
	LinkedBy []string `json:"linkedBy,omitempty"`
}

// Size returns the number of rows in the group.
func (g MergeGroup) Size() int {
	return len(g.Rows)
}

// FindDuplicateGroups partitions the rows of table into identity groups using
// the canonical normalizers. Two rows are linked when they share a non-empty
// normalized value on any key field; links are closed transitively.
func FindDuplicateGroups(table *schema.Table, keyFields []string) ([]MergeGroup, error) {
	index, err := BuildKeyIndex(table, keyFields, DefaultNormalizers(schema.DefaultContactRange))
	if err != nil {
		return nil, err
	}
	return GroupsFromIndex(index), nil
}

// GroupsFromIndex reads connected components off a key index. Groups are
// emitted in ascending order of their smallest row; every row belongs to
// exactly one group.
func GroupsFromIndex(index *KeyIndex) []MergeGroup {
	n := index.Stats.TotalRows
	uf := newUnionFind(n)
	via := make([][]bool, n)

	for j, f := range index.Fields {
		for _, rows := range index.ByField[f] {
			if len(rows) < 2 {
				continue
			}
			for _, r := range rows {
				uf.union(rows[0], r)
				if via[r] == nil {
					via[r] = make([]bool, len(index.Fields))
				}
				via[r][j] = true
			}
		}
	}

	slot := make(map[int]int, n)
	var groups []MergeGroup
	for i := 0; i < n; i++ {
		root := uf.find(i)
		g, ok := slot[root]
		if !ok {
			g = len(groups)
			slot[root] = g
			groups = append(groups, MergeGroup{})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}

	for g := range groups {
		if groups[g].Size() < 2 {
			continue
		}
		for j, f := range index.Fields {
			for _, r := range groups[g].Rows {
				if via[r] != nil && via[r][j] {
					groups[g].LinkedBy = append(groups[g].LinkedBy, f)
					break
				}
			}
		}
	}

	return groups
}

// unionFind is a disjoint-set forest over row indices with path compression
// and union by rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}
