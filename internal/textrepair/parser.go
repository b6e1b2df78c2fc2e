// README: Recovers structured JSON from loosely formatted model output.
package textrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoStructure is returned when no balanced, parseable JSON region exists in the input.
var ErrNoStructure = errors.New("textrepair: no balanced json structure found")

// Extract returns the largest balanced JSON object or array embedded in input.
// Markdown code fences are stripped first. Brackets inside JSON strings are
// ignored, including escaped quotes. The returned region is guaranteed to be
// valid JSON; if none exists, ErrNoStructure is returned.
func Extract(input string) (string, error) {
	s := stripFences(input)

	best := ""
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		end, ok := scanBalanced(s, i)
		if !ok {
			continue
		}
		region := s[i : end+1]
		if !json.Valid([]byte(region)) {
			// The outer region may be garbage wrapping a valid inner one,
			// so keep scanning from the next byte rather than past end.
			continue
		}
		if len(region) > len(best) {
			best = region
		}
		i = end
	}

	if best == "" {
		return "", ErrNoStructure
	}
	return best, nil
}

// Decode extracts the largest balanced JSON region from input and unmarshals it into v.
func Decode(input string, v any) error {
	region, err := Extract(input)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(region), v); err != nil {
		return fmt.Errorf("textrepair: decode: %w", err)
	}
	return nil
}

// scanBalanced walks from the opening bracket at start and returns the index
// of the bracket that closes it. String literals are skipped wholesale so
// brackets and escaped quotes inside them never affect the depth count.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}

// stripFences removes markdown code blocks if present (e.g. ```json ... ```).
func stripFences(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
