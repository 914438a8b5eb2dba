package llm

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"rss-portal/internal/domain/entity"
)

var (
	// scoreSummaryObject matches {"score": 4, "summary": "..."} embedded in prose.
	scoreSummaryObject = regexp.MustCompile(`\{\s*"score"\s*:\s*\d+\s*,\s*"summary"\s*:\s*"(?:[^"\\]|\\.)*"\s*\}`)

	scoreField = regexp.MustCompile(`"score"\s*:\s*(\d+)`)

	// summaryPrefix needs no closing quote so that truncated replies still yield text.
	summaryPrefix = regexp.MustCompile(`"summary"\s*:\s*"([^"]*)`)
)

const codeFence = "```"

// ExtractResult recovers {score, summary} from free-form model output.
// Strategies run from strict to lenient and the first success wins:
// fenced block unwrap, direct decode, first balanced object, object regex,
// and finally a bare score field with an optional unterminated summary.
// It never panics; any failure reads as ok=false.
func ExtractResult(text string) (result entity.ScoringResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			result, ok = entity.ScoringResult{}, false
		}
	}()

	s := strings.TrimSpace(text)
	if s == "" {
		return entity.ScoringResult{}, false
	}

	if inner, found := unwrapFence(s); found {
		s = inner
	}

	if strings.HasPrefix(s, "{") {
		if r, ok := decodeStrict(s); ok {
			return r, true
		}
	}

	if span, found := firstBalancedObject(s); found {
		if r, ok := decodeStrict(span); ok {
			return r, true
		}
	}

	if m := scoreSummaryObject.FindString(s); m != "" {
		if r, ok := decodeStrict(m); ok {
			return r, true
		}
	}

	if m := scoreField.FindStringSubmatch(s); m != nil {
		r := entity.ScoringResult{Score: parseDigits(m[1])}
		if sm := summaryPrefix.FindStringSubmatch(s); sm != nil {
			r.Summary = sm[1]
		}
		return r, true
	}

	return entity.ScoringResult{}, false
}

// unwrapFence returns the content of the first ``` block. The language tag
// on the opening line is dropped. A fence that was never closed (truncated
// output) yields everything after the opening line.
func unwrapFence(s string) (string, bool) {
	start := strings.Index(s, codeFence)
	if start < 0 {
		return "", false
	}
	body := s[start+len(codeFence):]

	// ```json\n{...} / ```{...}
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.Contains(body[:nl], "{") {
		body = body[nl+1:]
	} else {
		body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}

	if end := strings.Index(body, codeFence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// firstBalancedObject scans for the first top-level {...} span, ignoring
// braces inside string literals and honoring backslash escapes.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeStrict parses s as a JSON object and succeeds only when a numeric
// score is present. Numeric strings ("4") and floats (4.0) are accepted.
func decodeStrict(s string) (entity.ScoringResult, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return entity.ScoringResult{}, false
	}

	rawScore, ok := fields["score"]
	if !ok {
		return entity.ScoringResult{}, false
	}
	var n json.Number
	if err := json.Unmarshal(rawScore, &n); err != nil {
		return entity.ScoringResult{}, false
	}
	score, ok := numberToInt(n)
	if !ok {
		return entity.ScoringResult{}, false
	}

	var summary string
	if rawSummary, ok := fields["summary"]; ok {
		// a non-string summary is dropped, not fatal
		_ = json.Unmarshal(rawSummary, &summary)
	}

	return entity.ScoringResult{Score: score, Summary: summary}, true
}

func numberToInt(n json.Number) (int, bool) {
	if i, err := n.Int64(); err == nil {
		return clampInt(i), true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32, true
	case f < math.MinInt32:
		return math.MinInt32, true
	}
	return int(f), true
}

// parseDigits converts a \d+ match, saturating on overflow.
func parseDigits(s string) int {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return math.MaxInt32
	}
	return clampInt(i)
}

func clampInt(i int64) int {
	switch {
	case i > math.MaxInt32:
		return math.MaxInt32
	case i < math.MinInt32:
		return math.MinInt32
	}
	return int(i)
}
