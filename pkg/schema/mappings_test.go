package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferMappings(t *testing.T) {
	headers := []string{"序号", "姓名", "QQ号码", "手机号", "所在学院", "年级专业班级", "备注"}
	got := InferMappings(headers)

	assert.Equal(t, map[string]string{
		"序号":     FieldSerial,
		"姓名":     FieldName,
		"QQ号码":   FieldQQ,
		"手机号":    FieldContact,
		"所在学院":   FieldCollege,
		"年级专业班级": FieldGrade,
	}, got)
}

func TestInferMappings_FullWidthAndSpacing(t *testing.T) {
	got := InferMappings([]string{"ＱＱ", " 姓 名 ", "联系_方式"})
	assert.Equal(t, FieldQQ, got["ＱＱ"])
	assert.Equal(t, FieldName, got[" 姓 名 "])
	assert.Equal(t, FieldContact, got["联系_方式"])
}

func TestInferMappings_SubstringFallback(t *testing.T) {
	got := InferMappings([]string{"成员真实姓名", "本人手机（必填）"})
	assert.Equal(t, FieldName, got["成员真实姓名"])
	assert.Equal(t, FieldContact, got["本人手机（必填）"])
}

func TestInferMappings_FirstClaimantWins(t *testing.T) {
	got := InferMappings([]string{"联系方式", "电话"})
	assert.Equal(t, FieldContact, got["联系方式"])
	_, mapped := got["电话"]
	assert.False(t, mapped)
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, IsHeaderRow([]string{"序号", "姓名", "QQ号"}))
	assert.True(t, IsHeaderRow([]string{"", "ＱＱ"}))
	assert.False(t, IsHeaderRow([]string{"2023年度会员统计"}))
	assert.False(t, IsHeaderRow(nil))
}

func TestClubNameFromFilename(t *testing.T) {
	cases := map[string]string{
		"棋协社团会员信息统计表(2).xlsx": "棋协",
		"篮球协会信息统计表.csv":        "篮球协会",
		"书法社(1).xlsx":          "书法社",
		"书法社（3）.xlsx":          "书法社",
		"/data/rosters/摄影社.csv": "摄影社",
		"动漫社注册会员统计表.xlsx":      "动漫社",
	}
	for in, want := range cases {
		assert.Equal(t, want, ClubNameFromFilename(in), "input %q", in)
	}
}
