package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

type relatedReply struct {
	RelatedWords []Concept `json:"relatedWords"`
}

type explainReply struct {
	Explanation string `json:"explanation"`
}

// ParseConcepts decodes a related-words reply. It keeps at most MaxConcepts
// concepts, trimming whitespace and dropping blank or repeated words.
func ParseConcepts(reply string) ([]Concept, error) {
	var r relatedReply
	if err := decodeReply(reply, &r); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []Concept
	for _, c := range r.RelatedWords {
		c.Word = strings.TrimSpace(c.Word)
		c.Relation = strings.TrimSpace(c.Relation)
		if c.Word == "" || seen[c.Word] {
			continue
		}
		seen[c.Word] = true
		out = append(out, c)
		if len(out) == MaxConcepts {
			break
		}
	}
	return out, nil
}

// ParseExplanation decodes an explanation reply. A reply that is not JSON is
// taken as the explanation itself.
func ParseExplanation(reply string) (string, error) {
	var r explainReply
	if err := decodeReply(reply, &r); err != nil {
		if s := strings.TrimSpace(stripFences(reply)); s != "" && !strings.HasPrefix(s, "{") {
			return s, nil
		}
		return "", err
	}
	return strings.TrimSpace(r.Explanation), nil
}

func decodeReply(reply string, v any) error {
	obj, ok := firstObject(stripFences(reply))
	if !ok {
		return fmt.Errorf("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

// firstObject returns the first balanced {...} in s, honouring strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
