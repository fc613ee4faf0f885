package document

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// textConverter is the catch-all for plain text, markdown, and JSON.
type textConverter struct{}

func (c *textConverter) Accepts(info StreamInfo) bool {
	switch info.Extension {
	case ".txt", ".text", ".md", ".markdown", ".json":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "text/") || strings.HasPrefix(mime, "application/json")
}

func (c *textConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	text := decodeToUTF8(data)

	if isJSON(info) {
		if pretty, ok := reindentJSON(text); ok {
			text = "```json\n" + pretty + "\n```"
		}
	}

	return &result{Markdown: text}, nil
}

func isJSON(info StreamInfo) bool {
	return info.Extension == ".json" || strings.HasPrefix(strings.ToLower(info.MIMEType), "application/json")
}

func reindentJSON(text string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", false
	}
	return strings.TrimRight(buf.String(), "\n"), true
}

// decodeToUTF8 returns data as UTF-8, running charset detection when
// the bytes are not already clean UTF-8.
func decodeToUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	detector := chardet.NewTextDetector()
	if res, err := detector.DetectBest(data); err == nil {
		if enc := lookupEncoding(res.Charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(decoded)
			}
		}
	}
	return strings.ToValidUTF8(string(data), "")
}

// lookupEncoding maps the charset names chardet emits onto decoders.
func lookupEncoding(charset string) encoding.Encoding {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(charset, "-", ""), "_", "")) {
	case "utf8", "ascii", "usascii":
		return unicode.UTF8
	case "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso88591", "latin1":
		return charmap.ISO8859_1
	case "iso885915":
		return charmap.ISO8859_15
	case "windows1250", "cp1250":
		return charmap.Windows1250
	case "windows1251", "cp1251":
		return charmap.Windows1251
	case "windows1252", "cp1252":
		return charmap.Windows1252
	case "koi8r":
		return charmap.KOI8R
	case "shiftjis", "sjis", "cp932":
		return japanese.ShiftJIS
	case "eucjp":
		return japanese.EUCJP
	case "euckr", "cp949":
		return korean.EUCKR
	case "gb2312", "gbk", "gb18030", "cp936":
		return simplifiedchinese.GBK
	case "big5", "cp950":
		return traditionalchinese.Big5
	}
	return nil
}
