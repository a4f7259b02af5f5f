package drift

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/ccd/internal/models"
)

var annotatedAt = time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)

type fakeBaseline struct {
	entries map[string]string
	err     error
}

func (f *fakeBaseline) Get(path string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	sum, ok := f.entries[path]
	return sum, ok, nil
}

func driftedFile() *models.SourceFile {
	return &models.SourceFile{
		Path:         "src/auth.py",
		State:        models.StatePresent,
		LastModified: annotatedAt.Add(1 * time.Hour),
		Checksum:     "abc123",
		Annotation:   &models.AnnotationRecord{ArtifactRef: "modules/auth.md", Freshness: annotatedAt},
	}
}

func TestDetect_NoneWhenMtimeWithinTolerance(t *testing.T) {
	d := NewDetector(2*time.Second, nil)
	f := driftedFile()
	f.LastModified = annotatedAt.Add(1 * time.Second)
	if got := d.Detect(f); got != models.DriftNone {
		t.Errorf("status = %v, want none", got)
	}
}

func TestDetect_NoneWhenMtimeOlder(t *testing.T) {
	d := NewDetector(2*time.Second, nil)
	f := driftedFile()
	f.LastModified = annotatedAt.Add(-1 * time.Hour)
	if got := d.Detect(f); got != models.DriftNone {
		t.Errorf("status = %v, want none", got)
	}
}

func TestDetect_SuspectedWithoutBaseline(t *testing.T) {
	d := NewDetector(2*time.Second, nil)
	if got := d.Detect(driftedFile()); got != models.DriftSuspected {
		t.Errorf("status = %v, want suspected", got)
	}
}

func TestDetect_SuspectedWhenBaselineMissesFile(t *testing.T) {
	d := NewDetector(2*time.Second, &fakeBaseline{entries: map[string]string{}})
	if got := d.Detect(driftedFile()); got != models.DriftSuspected {
		t.Errorf("status = %v, want suspected", got)
	}
}

func TestDetect_ConfirmedOnHashMismatch(t *testing.T) {
	d := NewDetector(2*time.Second, &fakeBaseline{entries: map[string]string{"src/auth.py": "old999"}})
	if got := d.Detect(driftedFile()); got != models.DriftConfirmed {
		t.Errorf("status = %v, want confirmed", got)
	}
}

func TestDetect_NoneOnHashMatch(t *testing.T) {
	// mtime moved (e.g. a fresh checkout) but the bytes are unchanged.
	d := NewDetector(2*time.Second, &fakeBaseline{entries: map[string]string{"src/auth.py": "abc123"}})
	if got := d.Detect(driftedFile()); got != models.DriftNone {
		t.Errorf("status = %v, want none", got)
	}
}

func TestDetect_SuspectedOnBaselineError(t *testing.T) {
	d := NewDetector(2*time.Second, &fakeBaseline{err: errors.New("db locked")})
	if got := d.Detect(driftedFile()); got != models.DriftSuspected {
		t.Errorf("status = %v, want suspected", got)
	}
}

func TestDetect_NoneWithoutAnnotation(t *testing.T) {
	d := NewDetector(2*time.Second, nil)
	f := &models.SourceFile{Path: "a.py", State: models.StateAbsent, LastModified: time.Now()}
	if got := d.Detect(f); got != models.DriftNone {
		t.Errorf("status = %v, want none", got)
	}
}

func TestDetect_NoneWithZeroFreshness(t *testing.T) {
	d := NewDetector(2*time.Second, nil)
	f := driftedFile()
	f.Annotation.Freshness = time.Time{}
	if got := d.Detect(f); got != models.DriftNone {
		t.Errorf("status = %v, want none", got)
	}
}

func TestNewDetector_DefaultTolerance(t *testing.T) {
	d := NewDetector(0, nil)
	f := driftedFile()
	f.LastModified = annotatedAt.Add(1 * time.Second)
	if got := d.Detect(f); got != models.DriftNone {
		t.Errorf("default tolerance must absorb a one-second skew, got %v", got)
	}
}
