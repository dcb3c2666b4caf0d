package toolrun

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// DecodeText converts raw tool output to a string. Tool diagnostics are free
// form and occasionally carry invalid UTF-8 (file names, codec metadata), so
// invalid sequences become U+FFFD instead of failing.
func DecodeText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(decoded)
}
