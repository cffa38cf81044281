package yearfmt

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Rule kinds accepted in a RuleSpec.
const (
	KindRewrite  = "rewrite"
	KindNumerals = "numerals"
	KindKeep     = "keep"
)

// centuryPlaceholder is expanded to the configured century in patterns and
// replacement templates.
const centuryPlaceholder = "{century}"

// ErrInvalidRule is returned when a RuleSpec cannot be compiled.
var ErrInvalidRule = eris.New("invalid year rule")

// RuleSpec is the data form of a year repair rule, as found in configuration.
//
//   - rewrite: every match of Pattern is replaced by the Replace template
//     (regexp.Expand syntax, e.g. "${1}级").
//   - numerals: the last capture group of each match holds Chinese
//     numerals, which are converted to digits; a 2-digit result gets the
//     century prefix. Matches are rewritten until none remain.
//   - keep: a match leaves the text unchanged and stops evaluation.
type RuleSpec struct {
	Name    string `json:"name" toml:"name"`
	Kind    string `json:"kind" toml:"kind"`
	Pattern string `json:"pattern" toml:"pattern"`
	Replace string `json:"replace,omitempty" toml:"replace"`
}

// Rule is one compiled repair rule. Apply reports whether the rule matched.
type Rule interface {
	Name() string
	Apply(s string) (string, bool)
}

const numeralClass = "〇零一二三四五六七八九"

var numeralDigits = map[rune]byte{
	'〇': '0', '零': '0', '一': '1', '二': '2', '三': '3',
	'四': '4', '五': '5', '六': '6', '七': '7', '八': '8', '九': '9',
}

// DefaultCentury is the century prefix used to expand 2-digit years.
const DefaultCentury = "20"

// DefaultRules is the ordered rule list. The first rule that matches wins.
var DefaultRules = []RuleSpec{
	{
		Name:    "short_year",
		Kind:    KindRewrite,
		Pattern: `(^|[^0-9])([0-9]{2})级`,
		Replace: "${1}{century}${2}级",
	},
	{
		Name:    "transposed_year",
		Kind:    KindRewrite,
		Pattern: `{century}[班届]([0-9])级`,
		Replace: "{century}2${1}级",
	},
	{
		Name:    "numeral_full_year",
		Kind:    KindNumerals,
		Pattern: `([` + numeralClass + `]{4})级`,
	},
	{
		Name:    "numeral_short_year",
		Kind:    KindNumerals,
		Pattern: `(^|[^` + numeralClass + `])([` + numeralClass + `]{2})级`,
	},
	{
		Name:    "year_character",
		Kind:    KindRewrite,
		Pattern: `^({century}[0-9]{2})年(级)?`,
		Replace: "${1}级",
	},
	{
		Name:    "year_marker_spacing",
		Kind:    KindRewrite,
		Pattern: `^({century}[0-9]{2})[\s\x{3000}]+级`,
		Replace: "${1}级",
	},
	{
		Name:    "missing_marker",
		Kind:    KindRewrite,
		Pattern: `^({century}[0-9]{2})([^级年0-9\s\x{3000}])`,
		Replace: "${1}级${2}",
	},
	{
		Name:    "duplicate_marker",
		Kind:    KindRewrite,
		Pattern: `级{2,}`,
		Replace: "级",
	},
	{
		Name:    "well_formed",
		Kind:    KindKeep,
		Pattern: `{century}[0-9]{2}级`,
	},
}

// Compile turns a RuleSpec into a Rule, expanding the century placeholder.
func Compile(spec RuleSpec, century string) (Rule, error) {
	if strings.TrimSpace(spec.Pattern) == "" {
		return nil, eris.Wrapf(ErrInvalidRule, "rule %q: empty pattern", spec.Name)
	}
	pattern := strings.ReplaceAll(spec.Pattern, centuryPlaceholder, regexp.QuoteMeta(century))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidRule, "rule %q: %v", spec.Name, err)
	}

	switch spec.Kind {
	case KindRewrite, "":
		return &rewriteRule{
			name:     spec.Name,
			re:       re,
			template: strings.ReplaceAll(spec.Replace, centuryPlaceholder, century),
		}, nil
	case KindNumerals:
		if re.NumSubexp() == 0 {
			return nil, eris.Wrapf(ErrInvalidRule, "rule %q: numerals rule needs a capture group", spec.Name)
		}
		return &numeralRule{name: spec.Name, re: re, century: century}, nil
	case KindKeep:
		return &keepRule{name: spec.Name, re: re}, nil
	default:
		return nil, eris.Wrapf(ErrInvalidRule, "rule %q: unknown kind %q", spec.Name, spec.Kind)
	}
}

type rewriteRule struct {
	name     string
	re       *regexp.Regexp
	template string
}

func (r *rewriteRule) Name() string { return r.name }

func (r *rewriteRule) Apply(s string) (string, bool) {
	if !r.re.MatchString(s) {
		return s, false
	}
	return r.re.ReplaceAllString(s, r.template), true
}

type numeralRule struct {
	name    string
	re      *regexp.Regexp
	century string
}

func (r *numeralRule) Name() string { return r.name }

func (r *numeralRule) Apply(s string) (string, bool) {
	matched := false
	for {
		loc := r.re.FindStringSubmatchIndex(s)
		if loc == nil {
			return s, matched
		}
		matched = true
		g := len(loc)/2 - 1
		start, end := loc[2*g], loc[2*g+1]
		if start < 0 {
			return s, true
		}
		group := s[start:end]
		out := r.digits(group)
		if out == group {
			return s, true
		}
		s = s[:start] + out + s[end:]
	}
}

// digits converts the numerals in group. A group with no numerals comes
// back unchanged.
func (r *numeralRule) digits(group string) string {
	var b strings.Builder
	n := 0
	for _, c := range group {
		if d, ok := numeralDigits[c]; ok {
			b.WriteByte(d)
			n++
		} else {
			b.WriteRune(c)
		}
	}
	if n == 2 {
		return r.century + b.String()
	}
	return b.String()
}

type keepRule struct {
	name string
	re   *regexp.Regexp
}

func (r *keepRule) Name() string { return r.name }

func (r *keepRule) Apply(s string) (string, bool) {
	return s, r.re.MatchString(s)
}
