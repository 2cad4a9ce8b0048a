package attrs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Parse decodes a serialized attribute payload into a Value. Scraped
// payloads are JSON-like but frequently malformed: single-quote-delimited
// dictionaries (Python repr output), unquoted keys, trailing commas, or
// surrounding text. Parse tries the raw input first, then progressively
// repaired forms. A payload that cannot be recovered degrades to an empty
// object rather than an error; pricing and matching must keep working on
// listings with broken attribute text.
func Parse(input string) Value {
	v, err := parseStrict(input)
	if err == nil {
		return v
	}

	if extracted := extractBalanced(input, '{', '}'); extracted != "" {
		if v, err := parseStrict(extracted); err == nil {
			return v
		}
		if v, err := parseStrict(repairJSON(extracted)); err == nil {
			return v
		}
	}

	if v, err := parseStrict(repairJSON(input)); err == nil {
		return v
	}

	return Object()
}

func parseStrict(input string) (Value, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Value{}, fmt.Errorf("attrs: empty input")
	}
	v, rest, err := decodeValue(s)
	if err != nil {
		return Value{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return Value{}, fmt.Errorf("attrs: trailing data after value")
	}
	if v.Kind() != KindObject {
		return Value{}, fmt.Errorf("attrs: payload is not an object")
	}
	return v, nil
}

// decodeValue is a small recursive-descent JSON reader that keeps object
// key order, which encoding/json's map decoding discards.
func decodeValue(s string) (Value, string, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return Value{}, "", fmt.Errorf("attrs: unexpected end of input")
	}

	switch s[0] {
	case '{':
		return decodeObject(s)
	case '[':
		return decodeList(s)
	case '"':
		str, rest, err := decodeString(s)
		if err != nil {
			return Value{}, "", err
		}
		return String(str), rest, nil
	}

	if strings.HasPrefix(s, "null") {
		return Value{}, s[4:], nil
	}
	if strings.HasPrefix(s, "true") {
		return String("true"), s[4:], nil
	}
	if strings.HasPrefix(s, "false") {
		return String("false"), s[5:], nil
	}

	return decodeNumber(s)
}

func decodeObject(s string) (Value, string, error) {
	obj := Object()
	s = s[1:] // consume '{'
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if strings.HasPrefix(s, "}") {
		return obj, s[1:], nil
	}

	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" || s[0] != '"' {
			return Value{}, "", fmt.Errorf("attrs: expected object key")
		}
		key, rest, err := decodeString(s)
		if err != nil {
			return Value{}, "", err
		}
		s = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if !strings.HasPrefix(s, ":") {
			return Value{}, "", fmt.Errorf("attrs: expected ':' after key %q", key)
		}
		val, rest2, err := decodeValue(s[1:])
		if err != nil {
			return Value{}, "", err
		}
		obj.Set(key, val)
		s = strings.TrimLeftFunc(rest2, unicode.IsSpace)
		if strings.HasPrefix(s, ",") {
			s = s[1:]
			continue
		}
		if strings.HasPrefix(s, "}") {
			return obj, s[1:], nil
		}
		return Value{}, "", fmt.Errorf("attrs: expected ',' or '}' in object")
	}
}

func decodeList(s string) (Value, string, error) {
	var items []Value
	s = s[1:] // consume '['
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if strings.HasPrefix(s, "]") {
		return List(), s[1:], nil
	}

	for {
		val, rest, err := decodeValue(s)
		if err != nil {
			return Value{}, "", err
		}
		items = append(items, val)
		s = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if strings.HasPrefix(s, ",") {
			s = s[1:]
			continue
		}
		if strings.HasPrefix(s, "]") {
			return List(items...), s[1:], nil
		}
		return Value{}, "", fmt.Errorf("attrs: expected ',' or ']' in list")
	}
}

func decodeString(s string) (string, string, error) {
	// s starts with '"'; find the closing quote honoring escapes
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			unquoted, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", fmt.Errorf("attrs: bad string literal: %w", err)
			}
			return unquoted, s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("attrs: unterminated string")
}

func decodeNumber(s string) (Value, string, error) {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return Value{}, "", fmt.Errorf("attrs: unexpected character %q", s[0])
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return Value{}, "", fmt.Errorf("attrs: bad number %q: %w", s[:end], err)
	}
	return Number(f), s[end:], nil
}

var trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
var unquotedKeyRegex = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)

// repairJSON fixes the malformed payload shapes seen in scraped data:
// single-quoted dictionaries, unquoted keys, trailing commas, stray
// control characters.
func repairJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = convertSingleQuotes(s)
	s = trailingCommaRegex.ReplaceAllString(s, "$1")
	s = unquotedKeyRegex.ReplaceAllString(s, `$1"$2"$3`)
	s = stripControlChars(s)
	return s
}

// convertSingleQuotes rewrites single-quote-delimited strings as
// double-quoted JSON strings, escaping embedded double quotes and leaving
// apostrophes inside double-quoted strings alone.
func convertSingleQuotes(input string) string {
	var b strings.Builder
	inDouble := false
	inSingle := false
	escape := false

	for _, ch := range input {
		if escape {
			b.WriteRune(ch)
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			b.WriteRune(ch)
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteRune(ch)
		case ch == '"' && inSingle:
			b.WriteString(`\"`)
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteByte('"')
		default:
			b.WriteRune(ch)
		}
	}

	return b.String()
}

// extractBalanced returns the first balanced {...} or [...] region of the
// input, or "" when none exists
func extractBalanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

var controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func stripControlChars(input string) string {
	return controlCharRegex.ReplaceAllString(input, "")
}
