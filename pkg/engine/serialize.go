package engine

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// SerializeResult converts a merge result to JSON so that a later step (or
// another process) can report on it without re-running the merge.
func SerializeResult(res *Result) ([]byte, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "serialize merge result")
	}
	return data, nil
}

// DeserializeResult reconstructs a Result from its JSON representation.
// The flat conflict list is rebuilt from the members when it is absent.
func DeserializeResult(data []byte) (*Result, error) {
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, eris.Wrap(err, "deserialize merge result")
	}
	if len(res.Members) != len(res.Groups) {
		return nil, eris.Errorf("deserialize merge result: %d members for %d groups", len(res.Members), len(res.Groups))
	}
	if res.Conflicts == nil {
		for _, mem := range res.Members {
			res.Conflicts = append(res.Conflicts, mem.Conflicts...)
		}
	}
	return &res, nil
}
