// Package jsonextract pulls the first balanced JSON object out of free-form
// model output.
package jsonextract

import (
	"errors"
	"regexp"
	"strings"
)

var ErrNoJSONFound = errors.New("no_json_found")

var (
	fenceRe = regexp.MustCompile("```[A-Za-z0-9_+-]*")

	// Complete reasoning blocks are dropped before the line filter runs so that a
	// brace inside the model's scratch work never becomes the extraction start.
	reasoningBlockRe = regexp.MustCompile(`(?is)<(think|thinking|reasoning|analysis|scratchpad)>.*?</(think|thinking|reasoning|analysis|scratchpad)>`)
	reasoningLineRe  = regexp.MustCompile(`(?i)^\s*</?(think|thinking|reasoning|analysis|scratchpad)\b[^>]*>`)
)

// Sanitize removes code fence delimiters and reasoning markers. Fenced content
// itself is kept.
func Sanitize(raw string) string {
	s := fenceRe.ReplaceAllString(raw, "")
	s = reasoningBlockRe.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if reasoningLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Extract sanitizes raw and returns the first balanced top-level object.
func Extract(raw string) (string, error) {
	return FirstObject(Sanitize(raw))
}

// FirstObject scans from the first '{' and returns the substring up to the
// brace that brings depth back to zero. Braces inside single or double quoted
// strings are not counted.
func FirstObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSONFound
	}

	depth := 0
	var quote byte
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSONFound
}
