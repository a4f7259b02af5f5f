// Package annotation locates, parses, and writes the CCD-CONTEXT block that
// links a source file to its documentation artifact. Files are treated as
// opaque byte streams: only the leading lines are ever inspected.
package annotation

import (
	"strconv"
	"strings"
	"time"

	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/syntax"
)

// Marker starts every annotation line, after the comment delimiter.
const Marker = "CCD-CONTEXT:"

// headWindow bounds how many leading lines are inspected. Annotation blocks
// are a header convention; they are never searched for deeper in the file.
const headWindow = 40

// Annotation keys. Required: file, freshness, health.
const (
	KeyFile         = "file"
	KeyFreshness    = "freshness"
	KeyHealth       = "health"
	KeyDependencies = "dependencies"
	KeyTags         = "tags"
	KeyOwner        = "owner"
	KeyReviewDate   = "review-date"
	KeyStatus       = "status"
)

// timeLayouts accepted for the @freshness value, tried in order.
var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// blockSpan is the line range [Start, End] occupied by the annotation block,
// including pure block-comment delimiter lines that wrap it.
type blockSpan struct {
	Start int
	End   int
}

// Scan locates the first annotation block in the leading lines of content and
// returns the parsed record. The second return is false when no block exists.
// Subsequent blocks are ignored so re-scans stay idempotent.
func Scan(content []byte, cs syntax.CommentSyntax) (*models.AnnotationRecord, bool) {
	rec, _, ok := scanBlock(content, cs)
	return rec, ok
}

func scanBlock(content []byte, cs syntax.CommentSyntax) (*models.AnnotationRecord, blockSpan, bool) {
	lines := splitLines(content)
	limit := len(lines)
	if limit > headWindow {
		limit = headWindow
	}

	rec := &models.AnnotationRecord{Health: models.HealthUnset}
	span := blockSpan{Start: -1, End: -1}
	matched := false
	inBlock := false

	for i := 0; i < limit; i++ {
		trimmed := strings.TrimSpace(lines[i])

		if trimmed == "" {
			// Blank lines never terminate a block.
			continue
		}

		// Bare block-comment delimiters adjacent to tag lines belong to the span.
		if cs.BlockOpen != "" && trimmed == cs.BlockOpen && !matched {
			inBlock = true
			continue
		}
		if cs.BlockClose != "" && trimmed == cs.BlockClose && inBlock {
			if matched {
				span.End = i
				break
			}
			inBlock = false
			continue
		}

		payload, ok := stripComment(trimmed, cs, &inBlock)
		if !ok || !strings.HasPrefix(payload, Marker) {
			if matched {
				break
			}
			continue
		}

		tag := strings.TrimSpace(strings.TrimPrefix(payload, Marker))
		if !applyTag(rec, tag) {
			if matched {
				break
			}
			continue
		}
		if !matched {
			matched = true
			span.Start = i
			if inBlock && i > 0 && strings.TrimSpace(lines[i-1]) == cs.BlockOpen {
				span.Start = i - 1
			}
		}
		span.End = i
	}

	if !matched {
		return nil, blockSpan{Start: -1, End: -1}, false
	}
	return rec, span, true
}

// stripComment removes the comment delimiters from a trimmed line, honoring
// open block-comment state. It returns the inner payload.
func stripComment(trimmed string, cs syntax.CommentSyntax, inBlock *bool) (string, bool) {
	if cs.LinePrefix != "" && strings.HasPrefix(trimmed, cs.LinePrefix) {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, cs.LinePrefix)), true
	}
	if cs.BlockOpen != "" && strings.HasPrefix(trimmed, cs.BlockOpen) {
		rest := strings.TrimPrefix(trimmed, cs.BlockOpen)
		if cs.BlockClose != "" && strings.HasSuffix(rest, cs.BlockClose) {
			rest = strings.TrimSuffix(rest, cs.BlockClose)
		} else {
			*inBlock = true
		}
		return strings.TrimSpace(rest), true
	}
	if *inBlock {
		rest := trimmed
		if cs.BlockClose != "" && strings.HasSuffix(rest, cs.BlockClose) {
			rest = strings.TrimSuffix(rest, cs.BlockClose)
			*inBlock = false
		}
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// applyTag parses one "@key:value" pair into rec. Unknown keys are retained
// as opaque extra fields for forward compatibility.
func applyTag(rec *models.AnnotationRecord, tag string) bool {
	if !strings.HasPrefix(tag, "@") {
		return false
	}
	key, value, found := strings.Cut(tag[1:], ":")
	if !found {
		return false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" {
		return false
	}

	switch key {
	case KeyFile:
		rec.ArtifactRef = value
	case KeyFreshness:
		rec.Freshness = parseTime(value)
	case KeyHealth:
		rec.Health = parseHealth(value)
	case KeyDependencies:
		rec.Dependencies = splitList(value)
	case KeyTags:
		rec.Tags = splitList(value)
	case KeyOwner:
		rec.Owner = value
	case KeyReviewDate:
		rec.ReviewDate = value
	case KeyStatus:
		rec.Status = value
	default:
		rec.Extra = append(rec.Extra, models.Field{Key: key, Value: value})
	}
	return true
}

func parseTime(value string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseHealth(value string) int {
	v := strings.TrimSuffix(strings.TrimSpace(value), "%")
	n, err := strconv.Atoi(v)
	if err != nil {
		return models.HealthUnset
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitLines splits content into lines without dropping a trailing newline
// marker: a final "\n" yields no phantom empty line beyond the real ones.
func splitLines(content []byte) []string {
	s := string(content)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	return lines
}
