package registry

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/starford/ccd/internal/models"
	"github.com/starford/ccd/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuild_ParsesFrontMatter(t *testing.T) {
	root := testutil.TestTree(t)
	testutil.WriteFile(t, root, "modules/auth.md", `---
title: Auth Module
owner: platform-team
updated_at: 2025-01-20T09:30:00Z
dependencies:
  - modules/session.md
tags: [auth, security]
consumers:
  - src/auth.py
review_cycle: quarterly
---
# Auth

Body text.
`)
	testutil.WriteFile(t, root, "modules/session.md", "# Session\n")

	reg, err := Build(root, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d, want 2", reg.Len())
	}

	art, ok := reg.Lookup("modules/auth.md")
	if !ok {
		t.Fatal("auth artifact not indexed")
	}
	if art.Title != "Auth Module" || art.Owner != "platform-team" {
		t.Errorf("artifact = %+v", art)
	}
	want := time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)
	if !art.UpdatedAt.Equal(want) {
		t.Errorf("updated_at = %v, want %v", art.UpdatedAt, want)
	}
	if !reflect.DeepEqual(art.Dependencies, []string{"modules/session.md"}) {
		t.Errorf("dependencies = %v", art.Dependencies)
	}
	if !reflect.DeepEqual(art.Consumers, []string{"src/auth.py"}) {
		t.Errorf("consumers = %v", art.Consumers)
	}
	if art.BodyLength == 0 {
		t.Error("body length not recorded")
	}
	if _, ok := art.Extra["review_cycle"]; !ok {
		t.Errorf("unknown front matter key dropped: %v", art.Extra)
	}
}

func TestBuild_NoFrontMatterFallsBackToMtime(t *testing.T) {
	root := testutil.TestTree(t)
	p := testutil.WriteFile(t, root, "plain.md", "# Plain\n\nNo metadata here.\n")
	mtime := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	testutil.Touch(t, p, mtime)

	reg, err := Build(root, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	art, ok := reg.Lookup("plain.md")
	if !ok {
		t.Fatal("artifact without front matter must still be indexed")
	}
	if !art.UpdatedAt.Equal(mtime) {
		t.Errorf("updated_at = %v, want mtime %v", art.UpdatedAt, mtime)
	}
	if len(reg.Issues()) != 0 {
		t.Errorf("issues = %v, want none", reg.Issues())
	}
}

func TestBuild_MalformedFrontMatterIsIssueNotFatal(t *testing.T) {
	root := testutil.TestTree(t)
	testutil.WriteFile(t, root, "broken.md", "---\ntitle: [unclosed\n---\nbody\n")
	testutil.WriteFile(t, root, "unterminated.md", "---\ntitle: x\nnever closed\n")
	testutil.WriteFile(t, root, "good.md", "# Fine\n")

	reg, err := Build(root, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 1 {
		t.Errorf("len = %d, want only the good artifact", reg.Len())
	}
	issues := reg.Issues()
	if len(issues) != 2 {
		t.Fatalf("issues = %v, want 2", issues)
	}
	for _, is := range issues {
		if is.Code != models.CodeMalformedArtifact || is.Severity != models.SeverityError {
			t.Errorf("issue = %+v", is)
		}
	}
}

func TestBuild_IgnoresNonMarkdown(t *testing.T) {
	root := testutil.TestTree(t)
	testutil.WriteFile(t, root, "doc.md", "# Doc\n")
	testutil.WriteFile(t, root, "notes.txt", "not an artifact\n")
	testutil.WriteFile(t, root, "img.png", "\x89PNG\n")

	reg, err := Build(root, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 1 {
		t.Errorf("len = %d, want 1", reg.Len())
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	if _, err := Build("/nonexistent/ccd-docs-root", discardLogger()); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestNormalizeID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"modules/auth.md", "modules/auth.md"},
		{"./modules/auth.md", "modules/auth.md"},
		{" modules//auth.md ", "modules/auth.md"},
		{"modules/../modules/auth.md", "modules/auth.md"},
	}
	for _, c := range cases {
		if got := NormalizeID(c.in); got != c.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLookup_NormalizesReference(t *testing.T) {
	root := testutil.TestTree(t)
	testutil.WriteFile(t, root, "modules/auth.md", "# Auth\n")

	reg, err := Build(root, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("./modules/auth.md"); !ok {
		t.Error("lookup with ./ prefix failed")
	}
	if _, ok := reg.Lookup("modules/missing.md"); ok {
		t.Error("lookup of unknown id succeeded")
	}
}

func TestIDs_Sorted(t *testing.T) {
	root := testutil.TestTree(t)
	testutil.WriteFile(t, root, "b.md", "b\n")
	testutil.WriteFile(t, root, "a.md", "a\n")
	testutil.WriteFile(t, root, "c/d.md", "d\n")

	reg, err := Build(root, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.md", "b.md", "c/d.md"}
	if got := reg.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}
