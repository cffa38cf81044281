package schema

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Pre-compiled regular expressions for identity normalization.
var (
	nonDigitRe        = regexp.MustCompile(`[^0-9]`)
	numericArtifactRe = regexp.MustCompile(`^([0-9]+)\.0+$`)
	sciNotationRe     = regexp.MustCompile(`^[0-9](\.[0-9]+)?[eE]\+?[0-9]+$`)
	listSeparatorRe   = regexp.MustCompile(`[,，、;；]`)
)

// emptyMarkers are cell contents that spreadsheets and form tools use for
// "no value". Comparison is case-insensitive.
var emptyMarkers = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"无":    true,
	"空":    true,
	"/":    true,
}

// ContactRange bounds the digit count of a usable contact number.
type ContactRange struct {
	MinDigits int `json:"minDigits" toml:"min_digits"`
	MaxDigits int `json:"maxDigits" toml:"max_digits"`
}

// DefaultContactRange accepts landline numbers without area code (7 digits)
// up to mobile numbers (11 digits).
var DefaultContactRange = ContactRange{MinDigits: 7, MaxDigits: 11}

// IsEmptyValue reports whether a raw cell carries no usable value.
func IsEmptyValue(s string) bool {
	t := strings.TrimSpace(width.Fold.String(s))
	if t == "" {
		return true
	}
	return emptyMarkers[strings.ToLower(t)]
}

// NormalizeContact canonicalizes a contact number using DefaultContactRange.
func NormalizeContact(s string) string {
	return DefaultContactRange.Normalize(s)
}

// Normalize returns the digits of a contact number, or "" when the digit
// count falls outside the range. A leading 86 country code is dropped from
// 13-digit values.
func (r ContactRange) Normalize(s string) string {
	d := cellDigits(s)
	if len(d) == 13 && strings.HasPrefix(d, "86") {
		d = d[2:]
	}
	if len(d) == 0 || len(d) < r.MinDigits || len(d) > r.MaxDigits {
		return ""
	}
	return d
}

// NormalizeQQ returns the digits of a QQ identifier, dropping the ".0"
// artifact left by numeric spreadsheet cells. Returns "" when no digit remains.
func NormalizeQQ(s string) string {
	return cellDigits(s)
}

// NormalizeName removes every whitespace rune (including the ideographic
// space U+3000) from a person's name. Other characters are kept as-is.
func NormalizeName(name string) string {
	if IsEmptyValue(name) {
		return ""
	}
	return stripSpaces(name)
}

// NormalizeText is the comparison form for identity fields that have no
// dedicated normalizer: width-folded and trimmed.
func NormalizeText(s string) string {
	if IsEmptyValue(s) {
		return ""
	}
	return strings.TrimSpace(width.Fold.String(s))
}

// SplitList splits a multi-valued cell such as "棋协, 篮协、书法社" into its
// trimmed, non-empty parts.
func SplitList(s string) []string {
	if IsEmptyValue(s) {
		return nil
	}
	parts := listSeparatorRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && !IsEmptyValue(p) {
			out = append(out, p)
		}
	}
	return out
}

// cellDigits folds full-width digits, undoes numeric-cell artifacts
// ("123.0", "1.38E+10") and keeps only ASCII digits.
func cellDigits(s string) string {
	if IsEmptyValue(s) {
		return ""
	}
	t := stripSpaces(width.Fold.String(s))
	if m := numericArtifactRe.FindStringSubmatch(t); m != nil {
		t = m[1]
	} else if sciNotationRe.MatchString(t) {
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			t = strconv.FormatFloat(f, 'f', 0, 64)
		}
	}
	return nonDigitRe.ReplaceAllString(t, "")
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, s)
}
