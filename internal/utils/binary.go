package utils

import (
	"strings"
	"unicode/utf8"
)

// IsDecodableText reports whether data decodes as UTF-8 text.
// NUL bytes are valid UTF-8 and do not make data undecodable.
func IsDecodableText(data []byte) bool {
	return utf8.Valid(data)
}

// NormalizeLineEndings converts "\r\n" and lone "\r" line terminators to "\n",
// matching how text-mode readers present file content.
func NormalizeLineEndings(text string) string {
	if strings.IndexByte(text, '\r') < 0 {
		return text
	}
	var builder strings.Builder
	builder.Grow(len(text))
	for index := 0; index < len(text); index++ {
		currentByte := text[index]
		if currentByte != '\r' {
			builder.WriteByte(currentByte)
			continue
		}
		builder.WriteByte('\n')
		if index+1 < len(text) && text[index+1] == '\n' {
			index++
		}
	}
	return builder.String()
}
