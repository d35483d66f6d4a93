// Package texts is the file plumbing around the embedding engine: decoding
// novel sources with an encoding fallback chain, splitting and joining
// documents as lines, and managing the companion and backup files that live
// beside a target document.
package texts

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ErrUnreadableEncoding reports that a novel source decodes under none of
// the supported encodings.
var ErrUnreadableEncoding = errors.New("text not decodable with supported encodings")

var utf8BOM = "\xef\xbb\xbf"

// fallback chain tried after plain UTF-8, mirroring the encodings novel
// sources are commonly distributed in
var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GB18030,
	simplifiedchinese.GBK,
}

// LoadLines reads a text file and decodes it into lines, trying UTF-8
// (with or without BOM) first, then GB18030, then GBK.
func LoadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeLines(data)
}

// DecodeLines decodes raw bytes into lines, with the same fallback chain
// as LoadLines.
func DecodeLines(data []byte) ([]string, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), utf8BOM), nil
	}
	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		// the decoders substitute U+FFFD instead of failing, so treat a
		// substitution as a failed decode and move on
		if strings.ContainsRune(string(decoded), utf8.RuneError) {
			continue
		}
		return string(decoded), nil
	}
	return "", ErrUnreadableEncoding
}

// SplitLines splits text into lines without line terminators. A trailing
// newline does not produce a final empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// JoinLines is the inverse of SplitLines: newline-joined with a trailing
// newline.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
