package annotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/ccd/internal/apperr"
	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/syntax"
)

// Write inserts or replaces the annotation block at the top of content,
// preserving everything else byte for byte. When a block already exists and
// overwrite is false it returns apperr.ErrAlreadyPresent and no output.
// Callers own the actual file write.
func Write(content []byte, cs syntax.CommentSyntax, rec *models.AnnotationRecord, overwrite bool) ([]byte, error) {
	if cs.LinePrefix == "" && cs.BlockOpen == "" {
		return nil, apperr.ErrUnsupportedSyntax
	}

	lines := splitLines(content)

	_, span, found := scanBlock(content, cs)
	if found {
		if !overwrite {
			return nil, fmt.Errorf("annotation: %w", apperr.ErrAlreadyPresent)
		}
		lines = removeSpan(lines, span)
	}

	block := renderBlock(cs, rec)
	insertAt := preambleEnd(lines)

	var out []string
	out = append(out, lines[:insertAt]...)
	out = append(out, block...)
	out = append(out, "")
	out = append(out, lines[insertAt:]...)

	return []byte(strings.Join(out, "\n")), nil
}

// removeSpan drops the block lines plus one immediately following blank
// separator line, so repeated writes do not accumulate blank lines.
func removeSpan(lines []string, span blockSpan) []string {
	end := span.End
	if end+1 < len(lines) && strings.TrimSpace(lines[end+1]) == "" {
		end++
	}
	out := make([]string, 0, len(lines)-(end-span.Start+1))
	out = append(out, lines[:span.Start]...)
	out = append(out, lines[end+1:]...)
	return out
}

// renderBlock produces the canonical block: required keys first, then
// optional keys, then preserved extras in their original order.
func renderBlock(cs syntax.CommentSyntax, rec *models.AnnotationRecord) []string {
	var tags []string
	add := func(key, value string) {
		if value != "" {
			tags = append(tags, fmt.Sprintf("@%s:%s", key, value))
		}
	}

	add(KeyFile, rec.ArtifactRef)
	if !rec.Freshness.IsZero() {
		add(KeyFreshness, rec.Freshness.Format(time.RFC3339))
	}
	if rec.Health != models.HealthUnset {
		add(KeyHealth, fmt.Sprintf("%d%%", rec.Health))
	}
	add(KeyDependencies, strings.Join(rec.Dependencies, ","))
	add(KeyTags, strings.Join(rec.Tags, ","))
	add(KeyOwner, rec.Owner)
	add(KeyReviewDate, rec.ReviewDate)
	add(KeyStatus, rec.Status)
	for _, f := range rec.Extra {
		add(f.Key, f.Value)
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if cs.LinePrefix != "" {
			out = append(out, fmt.Sprintf("%s %s %s", cs.LinePrefix, Marker, tag))
		} else {
			out = append(out, fmt.Sprintf("%s %s %s %s", cs.BlockOpen, Marker, tag, cs.BlockClose))
		}
	}
	return out
}

// preamblePatterns are line prefixes that must stay above the annotation
// block: interpreter and processing directives the host language requires on
// the first line(s) of the file.
var preamblePatterns = []string{
	"#!",      // shebang
	"<?xml",   // XML declaration
	"<?php",   // PHP open tag
	"<!doctype", "<!DOCTYPE", // HTML doctype
}

// preambleEnd returns the index of the first line the block may be inserted
// at, skipping over a shebang or similar directive plus an adjacent encoding
// comment (e.g. a Python "# -*- coding: ... -*-" line).
func preambleEnd(lines []string) int {
	i := 0
	for i < len(lines) && i < 2 {
		trimmed := strings.TrimSpace(lines[i])
		if !isPreamble(trimmed) {
			break
		}
		i++
	}
	return i
}

func isPreamble(trimmed string) bool {
	for _, p := range preamblePatterns {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "# -*-") || strings.HasPrefix(lower, "# coding:") {
		return true
	}
	return false
}
