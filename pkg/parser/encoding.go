package parser

import (
	"bytes"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	xunicode "golang.org/x/text/encoding/unicode"
)

// BOM constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input data, strips any BOM,
// and returns the decoded UTF-8 bytes along with the detected encoding name.
// Data that is not valid UTF-8 is decoded as GB18030, the superset of the
// GBK encoding that Chinese spreadsheet tools export CSV files in.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	var dec *encoding.Decoder
	name := ""
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		dec, name = xunicode.UTF16(xunicode.LittleEndian, xunicode.UseBOM).NewDecoder(), "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		dec, name = xunicode.UTF16(xunicode.BigEndian, xunicode.UseBOM).NewDecoder(), "utf-16be"
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		dec, name = simplifiedchinese.GB18030.NewDecoder(), "gb18030"
	}

	decoded, err := dec.Bytes(data)
	if err != nil {
		return nil, "", eris.Wrapf(err, "%s decode failed", name)
	}
	return decoded, name, nil
}
