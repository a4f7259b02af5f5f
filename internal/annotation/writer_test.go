package annotation

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/starford/ccd/internal/apperr"
	"github.com/starford/ccd/internal/models"
)

func sampleRecord() *models.AnnotationRecord {
	return &models.AnnotationRecord{
		ArtifactRef:  "docs/modules/auth.md",
		Freshness:    time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC),
		Health:       95,
		Dependencies: []string{"docs/a.md", "docs/b.md"},
		Tags:         []string{"auth"},
		Owner:        "platform-team",
	}
}

func TestWrite_InsertsAtTop(t *testing.T) {
	content := []byte("def main():\n    pass\n")
	out, err := Write(content, mustSyntax(t, ".py"), sampleRecord(), false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("# CCD-CONTEXT: @file:docs/modules/auth.md\n")) {
		t.Errorf("block not at top:\n%s", out)
	}
	if !bytes.HasSuffix(out, content) {
		t.Errorf("original content not preserved byte for byte:\n%s", out)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	for _, ext := range []string{".py", ".go", ".css", ".html", ".sql"} {
		cs := mustSyntax(t, ext)
		rec := sampleRecord()
		rec.Extra = []models.Field{{Key: "sprint", Value: "42"}}

		out, err := Write([]byte("content line\n"), cs, rec, false)
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		got, found := Scan(out, cs)
		if !found {
			t.Fatalf("%s: written block not found by scanner", ext)
		}
		if got.ArtifactRef != rec.ArtifactRef {
			t.Errorf("%s: artifact ref = %q", ext, got.ArtifactRef)
		}
		if !got.Freshness.Equal(rec.Freshness) {
			t.Errorf("%s: freshness = %v", ext, got.Freshness)
		}
		if got.Health != rec.Health {
			t.Errorf("%s: health = %d", ext, got.Health)
		}
		if !reflect.DeepEqual(got.Dependencies, rec.Dependencies) {
			t.Errorf("%s: dependencies = %v", ext, got.Dependencies)
		}
		if !reflect.DeepEqual(got.Extra, rec.Extra) {
			t.Errorf("%s: extra = %v", ext, got.Extra)
		}
	}
}

func TestWrite_AlreadyPresent(t *testing.T) {
	cs := mustSyntax(t, ".py")
	out, err := Write([]byte("x = 1\n"), cs, sampleRecord(), false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Write(out, cs, sampleRecord(), false)
	if !errors.Is(err, apperr.ErrAlreadyPresent) {
		t.Fatalf("err = %v, want ErrAlreadyPresent", err)
	}
}

func TestWrite_OverwriteIsIdempotent(t *testing.T) {
	cs := mustSyntax(t, ".py")
	first, err := Write([]byte("x = 1\ny = 2\n"), cs, sampleRecord(), false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Write(first, cs, sampleRecord(), true)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("overwrite changed output:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestWrite_OverwriteReplacesValues(t *testing.T) {
	cs := mustSyntax(t, ".py")
	out, err := Write([]byte("x = 1\n"), cs, sampleRecord(), false)
	if err != nil {
		t.Fatal(err)
	}

	updated := sampleRecord()
	updated.Health = 40
	updated.ArtifactRef = "docs/other.md"
	out, err = Write(out, cs, updated, true)
	if err != nil {
		t.Fatal(err)
	}

	got, found := Scan(out, cs)
	if !found {
		t.Fatal("block not found after overwrite")
	}
	if got.Health != 40 || got.ArtifactRef != "docs/other.md" {
		t.Errorf("rec = %+v", got)
	}
	if strings.Count(string(out), Marker) != annotationLineCount(updated) {
		t.Errorf("stale annotation lines left behind:\n%s", out)
	}
}

func annotationLineCount(rec *models.AnnotationRecord) int {
	n := 0
	if rec.ArtifactRef != "" {
		n++
	}
	if !rec.Freshness.IsZero() {
		n++
	}
	if rec.Health != models.HealthUnset {
		n++
	}
	if len(rec.Dependencies) > 0 {
		n++
	}
	if len(rec.Tags) > 0 {
		n++
	}
	if rec.Owner != "" {
		n++
	}
	if rec.ReviewDate != "" {
		n++
	}
	if rec.Status != "" {
		n++
	}
	return n + len(rec.Extra)
}

func TestWrite_PreservesShebang(t *testing.T) {
	content := []byte("#!/usr/bin/env python3\n# -*- coding: utf-8 -*-\nprint(1)\n")
	out, err := Write(content, mustSyntax(t, ".py"), sampleRecord(), false)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(out), "\n")
	if lines[0] != "#!/usr/bin/env python3" {
		t.Errorf("line 0 = %q, shebang must stay first", lines[0])
	}
	if lines[1] != "# -*- coding: utf-8 -*-" {
		t.Errorf("line 1 = %q, coding line must stay above the block", lines[1])
	}
	if !strings.HasPrefix(lines[2], "# "+Marker) {
		t.Errorf("line 2 = %q, want annotation", lines[2])
	}
}

func TestWrite_PreservesXMLDeclaration(t *testing.T) {
	content := []byte("<?xml version=\"1.0\"?>\n<root/>\n")
	out, err := Write(content, mustSyntax(t, ".xml"), sampleRecord(), false)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(out), "\n")
	if lines[0] != "<?xml version=\"1.0\"?>" {
		t.Errorf("line 0 = %q, XML declaration must stay first", lines[0])
	}
	if !strings.Contains(lines[1], Marker) {
		t.Errorf("line 1 = %q, want annotation", lines[1])
	}
}

func TestWrite_UnsupportedSyntax(t *testing.T) {
	var cs = mustSyntax(t, ".py")
	cs.LinePrefix = ""
	cs.BlockOpen = ""
	if _, err := Write([]byte("x\n"), cs, sampleRecord(), false); !errors.Is(err, apperr.ErrUnsupportedSyntax) {
		t.Fatalf("err = %v, want ErrUnsupportedSyntax", err)
	}
}

func TestWrite_SkipsEmptyOptionalKeys(t *testing.T) {
	rec := &models.AnnotationRecord{
		ArtifactRef: "docs/a.md",
		Freshness:   time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC),
		Health:      100,
	}
	out, err := Write([]byte("x = 1\n"), mustSyntax(t, ".py"), rec, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(out), Marker); got != 3 {
		t.Errorf("annotation lines = %d, want 3:\n%s", got, out)
	}
	if strings.Contains(string(out), "@owner") || strings.Contains(string(out), "@dependencies") {
		t.Errorf("empty optional keys rendered:\n%s", out)
	}
}
