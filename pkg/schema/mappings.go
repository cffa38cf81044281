package schema

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// HeaderMappings maps normalized roster headers to canonical field names.
var HeaderMappings = map[string]string{
	// Name
	"姓名":   FieldName,
	"名字":   FieldName,
	"成员姓名": FieldName,
	"会员姓名": FieldName,

	// Club
	"社团":   FieldClub,
	"社团名称": FieldClub,
	"所属社团": FieldClub,
	"加入社团": FieldClub,

	// QQ
	"qq":   FieldQQ,
	"qq号":  FieldQQ,
	"qq号码": FieldQQ,

	// Contact
	"联系方式": FieldContact,
	"手机":   FieldContact,
	"手机号":  FieldContact,
	"手机号码": FieldContact,
	"电话":   FieldContact,
	"联系电话": FieldContact,

	// Grade / class
	"年级专业层次班级": FieldGrade,
	"年级专业班级":   FieldGrade,
	"专业班级":     FieldGrade,
	"班级":       FieldGrade,

	// Personal details
	"学院":   FieldCollege,
	"所在学院": FieldCollege,
	"性别":   FieldGender,
	"年龄":   FieldAge,
	"籍贯":   FieldHometown,
	"家庭住址": FieldHometown,
	"政治面貌": FieldPolitics,
	"宗教信仰": FieldReligion,
	"微信":   FieldWeChat,
	"微信号":  FieldWeChat,
	"序号":   FieldSerial,
}

// substringMappings is the fallback when no exact mapping exists.
// Order matters: more specific substrings come before generic ones.
var substringMappings = []struct {
	Substring string
	Target    string
}{
	{"社团名称", FieldClub},
	{"qq", FieldQQ},
	{"联系方式", FieldContact},
	{"手机", FieldContact},
	{"电话", FieldContact},
	{"年级专业", FieldGrade},
	{"专业班级", FieldGrade},
	{"班级", FieldGrade},
	{"学院", FieldCollege},
	{"姓名", FieldName},
	{"籍贯", FieldHometown},
	{"家庭", FieldHometown},
	{"住址", FieldHometown},
	{"政治面貌", FieldPolitics},
	{"宗教", FieldReligion},
	{"微信", FieldWeChat},
	{"序号", FieldSerial},
}

// HeaderKeywords mark the header row of a roster sheet.
var HeaderKeywords = []string{"姓名", "QQ", "联系方式", "社团", "序号"}

// filenameSuffixRes strip the boilerplate that club secretaries append to
// roster file names.
var filenameSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`社团会员信息统计表.*`),
	regexp.MustCompile(`信息统计表.*`),
	regexp.MustCompile(`注册会员统计表.*`),
	regexp.MustCompile(`会员统计表.*`),
	regexp.MustCompile(`\s*[(（]\d+[)）].*`),
}

// InferMappings takes roster headers and returns a map of sourceCol -> canonical field.
//  1. Lowercase, fold full-width characters, strip whitespace/underscores/hyphens
//  2. Exact match against HeaderMappings
//  3. Substring match
//  4. No match -> leave unmapped
//
// A canonical field is claimed by the first header that maps to it.
func InferMappings(headers []string) map[string]string {
	result := make(map[string]string, len(headers))
	usedTargets := make(map[string]bool)

	for _, header := range headers {
		normalized := normalizeHeader(header)
		if normalized == "" {
			continue
		}

		if target, ok := HeaderMappings[normalized]; ok && !usedTargets[target] {
			result[header] = target
			usedTargets[target] = true
			continue
		}

		for _, sm := range substringMappings {
			if strings.Contains(normalized, sm.Substring) && !usedTargets[sm.Target] {
				result[header] = sm.Target
				usedTargets[sm.Target] = true
				break
			}
		}
	}

	return result
}

// IsHeaderRow reports whether a raw row looks like a roster header.
func IsHeaderRow(cells []string) bool {
	for _, cell := range cells {
		for _, kw := range HeaderKeywords {
			if strings.Contains(width.Fold.String(cell), kw) {
				return true
			}
		}
	}
	return false
}

// ClubNameFromFilename derives a club name from a roster file name, e.g.
// "棋协社团会员信息统计表(2).xlsx" -> "棋协".
func ClubNameFromFilename(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	for _, re := range filenameSuffixRes {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// normalizeHeader lowercases a header and strips whitespace, underscores and hyphens.
func normalizeHeader(header string) string {
	s := strings.ToLower(width.Fold.String(header))
	s = stripSpaces(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
