package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	xunicode "golang.org/x/text/encoding/unicode"
)

const sampleCSV = "姓名,社团\n张三,棋协\n"

func TestDetectAndDecode_UTF8(t *testing.T) {
	out, enc, err := DetectAndDecode([]byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "utf-8", enc)
	assert.Equal(t, sampleCSV, string(out))
}

func TestDetectAndDecode_UTF8BOM(t *testing.T) {
	out, enc, err := DetectAndDecode(append([]byte{0xEF, 0xBB, 0xBF}, sampleCSV...))
	require.NoError(t, err)
	assert.Equal(t, "utf-8-bom", enc)
	assert.Equal(t, sampleCSV, string(out))
}

func TestDetectAndDecode_GBK(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(sampleCSV)
	require.NoError(t, err)

	out, enc, err := DetectAndDecode([]byte(gbk))
	require.NoError(t, err)
	assert.Equal(t, "gb18030", enc)
	assert.Equal(t, sampleCSV, string(out))
}

func TestDetectAndDecode_UTF16(t *testing.T) {
	le, err := xunicode.UTF16(xunicode.LittleEndian, xunicode.UseBOM).NewEncoder().Bytes([]byte(sampleCSV))
	require.NoError(t, err)
	out, enc, err := DetectAndDecode(le)
	require.NoError(t, err)
	assert.Equal(t, "utf-16le", enc)
	assert.Equal(t, sampleCSV, string(out))

	be, err := xunicode.UTF16(xunicode.BigEndian, xunicode.UseBOM).NewEncoder().Bytes([]byte(sampleCSV))
	require.NoError(t, err)
	out, enc, err = DetectAndDecode(be)
	require.NoError(t, err)
	assert.Equal(t, "utf-16be", enc)
	assert.Equal(t, sampleCSV, string(out))
}

func TestDetectAndDecode_Empty(t *testing.T) {
	out, enc, err := DetectAndDecode(nil)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", enc)
	assert.Empty(t, out)
}
