package engine

import (
	"github.com/rotisserie/eris"

	"clubmerge/pkg/schema"
)

// KeyNormalizer maps a raw cell to its comparison form. "" means the cell
// carries no identity signal.
type KeyNormalizer func(string) string

// Normalizers selects the normalizer for each identity key field.
type Normalizers map[string]KeyNormalizer

// DefaultNormalizers returns the normalizers for the canonical name, contact
// and QQ columns.
func DefaultNormalizers(contact schema.ContactRange) Normalizers {
	return Normalizers{
		schema.FieldName:    schema.NormalizeName,
		schema.FieldContact: contact.Normalize,
		schema.FieldQQ:      schema.NormalizeQQ,
	}
}

// For returns the normalizer for field, falling back to schema.NormalizeText.
func (n Normalizers) For(field string) KeyNormalizer {
	if fn, ok := n[field]; ok && fn != nil {
		return fn
	}
	return schema.NormalizeText
}

// KeyIndex provides lookup of rows by normalized identity value, per key field.
type KeyIndex struct {
	Fields  []string                    `json:"fields"`
	ByField map[string]map[string][]int `json:"byField"`
	// Keys[row][i] is the normalized value of Fields[i] for that row.
	Keys  [][]string `json:"keys"`
	Stats IndexStats `json:"stats"`
}

// IndexStats contains aggregate statistics about the key index.
type IndexStats struct {
	TotalRows    int            `json:"totalRows"`
	EmptyValues  map[string]int `json:"emptyValues"`
	UniqueValues map[string]int `json:"uniqueValues"`
	SharedValues map[string]int `json:"sharedValues"`
	NoIdentity   int            `json:"noIdentity"`
}

// BuildKeyIndex normalizes every key field of every row and indexes rows by
// the resulting value. Empty values are counted but never indexed, so they
// can never link two rows. Row lists are in ascending row order.
func BuildKeyIndex(table *schema.Table, fields []string, norms Normalizers) (*KeyIndex, error) {
	if len(fields) == 0 {
		return nil, ErrNoKeyFields
	}
	for _, f := range fields {
		if !table.HasColumn(f) {
			return nil, eris.Wrapf(ErrUnknownKeyField, "key field %q", f)
		}
	}

	n := table.Len()
	index := &KeyIndex{
		Fields:  append([]string(nil), fields...),
		ByField: make(map[string]map[string][]int, len(fields)),
		Keys:    make([][]string, n),
		Stats: IndexStats{
			TotalRows:    n,
			EmptyValues:  make(map[string]int, len(fields)),
			UniqueValues: make(map[string]int, len(fields)),
			SharedValues: make(map[string]int, len(fields)),
		},
	}
	for _, f := range fields {
		index.ByField[f] = make(map[string][]int)
	}

	for i, row := range table.Rows {
		keys := make([]string, len(fields))
		empty := true
		for j, f := range fields {
			v := norms.For(f)(row.Get(f))
			keys[j] = v
			if v == "" {
				index.Stats.EmptyValues[f]++
				continue
			}
			empty = false
			index.ByField[f][v] = append(index.ByField[f][v], i)
		}
		index.Keys[i] = keys
		if empty {
			index.Stats.NoIdentity++
		}
	}

	for _, f := range fields {
		index.Stats.UniqueValues[f] = len(index.ByField[f])
		for _, rows := range index.ByField[f] {
			if len(rows) > 1 {
				index.Stats.SharedValues[f]++
			}
		}
	}

	return index, nil
}

// Key returns the normalized value of field for row, or "" when field is not indexed.
func (k *KeyIndex) Key(row int, field string) string {
	for j, f := range k.Fields {
		if f == field {
			return k.Keys[row][j]
		}
	}
	return ""
}
