package registry

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontMatter holds the parsed metadata block of one artifact. Keys outside
// the fixed set are preserved in Extra rather than rejected.
type frontMatter struct {
	Title        string
	Owner        string
	UpdatedAt    time.Time
	Dependencies []string
	Tags         []string
	Consumers    []string
	Extra        map[string]any
}

// splitFrontMatter separates the YAML front matter (between leading ---
// delimiters) from the body. A missing block yields a nil map and no error;
// an unparsable block yields an error so the caller can record the artifact
// as malformed.
func splitFrontMatter(data []byte) (map[string]any, []byte, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, data, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, nil, fmt.Errorf("front matter: missing closing delimiter")
	}

	yamlBlock := rest[:idx]
	body := bytes.TrimLeft(rest[idx+1+len(delim):], "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, nil, fmt.Errorf("front matter: %w", err)
	}
	return fm, body, nil
}

// parseFrontMatter maps the raw front matter onto the fixed key set.
func parseFrontMatter(raw map[string]any) frontMatter {
	fm := frontMatter{Extra: make(map[string]any)}
	for key, value := range raw {
		switch strings.ToLower(key) {
		case "title":
			fm.Title = asString(value)
		case "owner":
			fm.Owner = asString(value)
		case "updatedat", "updated_at", "updated":
			fm.UpdatedAt = asTime(value)
		case "dependencies":
			fm.Dependencies = asStringList(value)
		case "tags":
			fm.Tags = asStringList(value)
		case "consumers":
			fm.Consumers = asStringList(value)
		default:
			fm.Extra[key] = value
		}
	}
	return fm
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func asStringList(v any) []string {
	switch list := v.(type) {
	case []any:
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		var out []string
		for _, p := range strings.Split(list, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}
