// Package yearfmt repairs malformed cohort years ("22级", "20班5级", "二三级")
// in free-text grade/class fields.
package yearfmt

import (
	"regexp"
)

// minPasses is the pass budget for very short text; longer text gets one
// extra pass per byte.
const minPasses = 8

var standardRe = regexp.MustCompile(`^20[0-9]{2}级`)

// Formatter applies an ordered rule list to grade text. Within a pass the
// first matching rule wins; passes repeat until no rule changes the text, so
// Fix(Fix(x)) == Fix(x).
type Formatter struct {
	rules []Rule
}

// New compiles specs in order.
func New(specs []RuleSpec, century string) (*Formatter, error) {
	if century == "" {
		century = DefaultCentury
	}
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		r, err := Compile(spec, century)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return &Formatter{rules: rules}, nil
}

// Default returns a formatter built from DefaultRules.
func Default() *Formatter {
	f, err := New(DefaultRules, DefaultCentury)
	if err != nil {
		panic(err)
	}
	return f
}

var defaultFormatter = Default()

// FixYearFormat repairs text with the default rule list.
func FixYearFormat(text string) string {
	return defaultFormatter.Fix(text)
}

// Fix returns the repaired text. Text no rule rewrites is returned unchanged.
func (f *Formatter) Fix(text string) string {
	out, _ := f.Explain(text)
	return out
}

// Explain returns the repaired text and the names of the rules that changed it.
func (f *Formatter) Explain(text string) (string, []string) {
	if text == "" {
		return text, nil
	}
	var applied []string
	cur := text
	seen := map[string]struct{}{cur: {}}
	for budget := minPasses + len(text); budget > 0; budget-- {
		next, name := f.pass(cur)
		if next == cur {
			break
		}
		if _, ok := seen[next]; ok {
			break
		}
		seen[next] = struct{}{}
		applied = append(applied, name)
		cur = next
	}
	return cur, applied
}

func (f *Formatter) pass(s string) (string, string) {
	for _, r := range f.rules {
		if out, ok := r.Apply(s); ok {
			return out, r.Name()
		}
	}
	return s, ""
}

// RuleNames lists the compiled rules in evaluation order.
func (f *Formatter) RuleNames() []string {
	names := make([]string, len(f.rules))
	for i, r := range f.rules {
		names[i] = r.Name()
	}
	return names
}

// IsStandard reports whether text starts with a well-formed 20xx级 cohort.
func IsStandard(text string) bool {
	return standardRe.MatchString(text)
}
