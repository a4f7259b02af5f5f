// Package syntax maps file extensions to comment delimiters. The table is
// pure data: scanning and writing are parameterized by a CommentSyntax value
// instead of dispatching on per-language handler types.
package syntax

import (
	"path/filepath"
	"strings"
)

// CommentSyntax describes how comments are written in one language.
// LinePrefix is empty for languages that only have block comments; BlockOpen
// and BlockClose are empty for languages that only have line comments.
type CommentSyntax struct {
	Language   string
	LinePrefix string
	BlockOpen  string
	BlockClose string
}

var table = map[string]CommentSyntax{
	".py":    {Language: "python", LinePrefix: "#"},
	".rb":    {Language: "ruby", LinePrefix: "#"},
	".sh":    {Language: "bash", LinePrefix: "#"},
	".bash":  {Language: "bash", LinePrefix: "#"},
	".ps1":   {Language: "powershell", LinePrefix: "#"},
	".yaml":  {Language: "yaml", LinePrefix: "#"},
	".yml":   {Language: "yaml", LinePrefix: "#"},
	".toml":  {Language: "toml", LinePrefix: "#"},
	".r":     {Language: "r", LinePrefix: "#"},
	".pl":    {Language: "perl", LinePrefix: "#"},
	".go":    {Language: "go", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".js":    {Language: "javascript", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".jsx":   {Language: "javascript", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".ts":    {Language: "typescript", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".tsx":   {Language: "typescript", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".java":  {Language: "java", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".c":     {Language: "c", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".h":     {Language: "c", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".cpp":   {Language: "cpp", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".hpp":   {Language: "cpp", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".cs":    {Language: "csharp", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".rs":    {Language: "rust", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".swift": {Language: "swift", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".kt":    {Language: "kotlin", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".scala": {Language: "scala", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".php":   {Language: "php", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".dart":  {Language: "dart", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".css":   {Language: "css", BlockOpen: "/*", BlockClose: "*/"},
	".scss":  {Language: "scss", LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"},
	".sql":   {Language: "sql", LinePrefix: "--", BlockOpen: "/*", BlockClose: "*/"},
	".lua":   {Language: "lua", LinePrefix: "--"},
	".hs":    {Language: "haskell", LinePrefix: "--"},
	".ex":    {Language: "elixir", LinePrefix: "#"},
	".exs":   {Language: "elixir", LinePrefix: "#"},
	".erl":   {Language: "erlang", LinePrefix: "%"},
	".vim":   {Language: "vimscript", LinePrefix: "\""},
	".html":  {Language: "html", BlockOpen: "<!--", BlockClose: "-->"},
	".xml":   {Language: "xml", BlockOpen: "<!--", BlockClose: "-->"},
	".vue":   {Language: "vue", BlockOpen: "<!--", BlockClose: "-->"},
	".md":    {Language: "markdown", BlockOpen: "<!--", BlockClose: "-->"},
}

// Lookup returns the comment syntax for ext (with or without the leading
// dot). The second return is false for unrecognized extensions.
func Lookup(ext string) (CommentSyntax, bool) {
	e := strings.ToLower(ext)
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	cs, ok := table[e]
	return cs, ok
}

// LookupPath returns the comment syntax for the extension of path.
func LookupPath(path string) (CommentSyntax, bool) {
	return Lookup(filepath.Ext(path))
}

// Extensions returns every supported extension. Order is unspecified.
func Extensions() []string {
	out := make([]string, 0, len(table))
	for ext := range table {
		out = append(out, ext)
	}
	return out
}
