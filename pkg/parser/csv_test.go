package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamParse(t *testing.T) {
	data := []byte("姓名,QQ号,备注\n张三,10001,\"队长,兼财务\"\n李四,10002,\n")
	records, err := StreamParse(data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "队长,兼财务", records[0]["备注"])
	assert.Equal(t, "10002", records[1]["QQ号"])
}

func TestStreamParseWithWarnings_RaggedRows(t *testing.T) {
	data := []byte("姓名,QQ号\n张三\n李四,10002,多余\n王五,10003,,\n")
	res, err := StreamParseWithWarnings(data)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	assert.Equal(t, "", res.Records[0]["QQ号"])
	assert.Equal(t, "10002", res.Records[1]["QQ号"])
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 3, res.Warnings[0].Row)
}

func TestFromGrid_HeaderDetection(t *testing.T) {
	grid := [][]string{
		{"2023年度棋协会员名单"},
		{},
		{"序号", "姓名", "QQ号"},
		{"1", "张三", "10001"},
		{"", "", ""},
		{"2", "李四", "10002"},
	}
	res, err := FromGrid(grid)
	require.NoError(t, err)
	assert.Equal(t, 3, res.HeaderRow)
	assert.Equal(t, []string{"序号", "姓名", "QQ号"}, res.Headers)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "李四", res.Records[1]["姓名"])
}

func TestFromGrid_DefaultsToFirstRow(t *testing.T) {
	res, err := FromGrid([][]string{{"name", "club"}, {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.HeaderRow)
	assert.Equal(t, "b", res.Records[0]["club"])
}

func TestFromGrid_Headers(t *testing.T) {
	res, err := FromGrid([][]string{{" 姓名 ", "姓名", ""}, {"张三", "张 三", "x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"姓名", "姓名_2", "列3"}, res.Headers)
	assert.Equal(t, "x", res.Records[0]["列3"])
}

func TestFromGrid_Errors(t *testing.T) {
	_, err := FromGrid(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = FromGrid([][]string{{"姓名", "QQ号"}, {"", ""}})
	assert.ErrorIs(t, err, ErrNoDataRows)
}
