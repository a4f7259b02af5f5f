package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/ccd/internal/engine"
	"github.com/starford/ccd/internal/models"
)

func sampleResult() *engine.Result {
	files := []models.FileResult{
		{
			File: models.SourceFile{
				Path:  "src/auth.py",
				State: models.StatePresent,
				Annotation: &models.AnnotationRecord{
					ArtifactRef: "modules/auth.md",
					Freshness:   time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC),
					Health:      95,
				},
			},
			Resolved: true,
			Artifact: "modules/auth.md",
			Score:    models.HealthScore{Total: 100, Fresh: true},
			Drift:    models.DriftNone,
		},
		{
			File:  models.SourceFile{Path: "src/billing.py", State: models.StateAbsent},
			Drift: models.DriftSuspected,
		},
	}
	repo, modules := models.HealthReport{Scope: models.ScopeRepository, Name: "repository", TotalFiles: 2}, []models.HealthReport{}
	return &engine.Result{
		Files:     files,
		Artifacts: []models.Artifact{{ID: "modules/auth.md", Title: "Auth"}},
		Repo:      repo,
		Modules:   modules,
	}
}

func readyRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := NewService()
	svc.Update(sampleResult())
	return NewRouter(svc, false, "", nil)
}

func doGet(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetReport_BeforeFirstRun(t *testing.T) {
	r := NewRouter(NewService(), false, "", nil)
	rec := doGet(t, r, "/report", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/report", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Report    models.HealthReport `json:"report"`
		UpdatedAt time.Time           `json:"updated_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Report.TotalFiles != 2 {
		t.Errorf("report = %+v", body.Report)
	}
	if body.UpdatedAt.IsZero() {
		t.Error("updated_at missing")
	}
}

func TestGetReport_ModuleScope(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/report?scope=module", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["modules"]; !ok {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestListFiles(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/files", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
}

func TestListFiles_DriftFilter(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/files?drift=suspected", nil)
	var body struct {
		Total int                 `json:"total"`
		Files []models.FileResult `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 || body.Files[0].File.Path != "src/billing.py" {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestGetFile(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/files/src/auth.py", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var result models.FileResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Artifact != "modules/auth.md" {
		t.Errorf("result = %+v", result)
	}
}

func TestGetFile_EncodedPath(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/files/src%2Fauth.py", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d for encoded path: %s", rec.Code, rec.Body)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/files/src/missing.py", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListArtifacts(t *testing.T) {
	rec := doGet(t, readyRouter(t), "/artifacts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 {
		t.Errorf("total = %d, want 1", body.Total)
	}
}

func TestAuthMiddleware(t *testing.T) {
	svc := NewService()
	svc.Update(sampleResult())
	r := NewRouter(svc, true, "secret", nil)

	if rec := doGet(t, r, "/report", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", rec.Code)
	}

	bad := http.Header{}
	bad.Set("Authorization", "Bearer wrong")
	if rec := doGet(t, r, "/report", bad); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}

	good := http.Header{}
	good.Set("Authorization", "Bearer secret")
	if rec := doGet(t, r, "/report", good); rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestService_UpdateReplaces(t *testing.T) {
	svc := NewService()
	if _, _, _, ok := svc.Report(); ok {
		t.Error("empty service reported a result")
	}
	svc.Update(sampleResult())
	if _, _, _, ok := svc.Report(); !ok {
		t.Error("updated service has no result")
	}
	if _, ok := svc.File("src/auth.py"); !ok {
		t.Error("file lookup failed")
	}
}
