package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitschool/academic-core/config"
	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/application/command"
	"github.com/digitschool/academic-core/internal/application/query"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/memory"
	"github.com/digitschool/academic-core/internal/infrastructure/render"
	"github.com/digitschool/academic-core/pkg/logger"
)

const (
	studentAlice = "3b38923e-34b5-4f2c-9a19-5b6a3c0d2f41"
	teacherID    = "c0ffee00-1234-4abc-9def-556677889900"
	classID      = "7a1d2e3f-4b5c-4d6e-8f90-a1b2c3d4e5f6"
)

type serverFixture struct {
	server  *Server
	handler http.Handler
	ledger  *memory.Ledger
	roster  *memory.Roster
	cache   *memory.SnapshotCache
	catalog *memory.Catalog
	store   *memory.ArtifactStore
	flags   *config.FeatureFlags
}

func newServerFixture() *serverFixture {
	roster := memory.NewRoster()
	ledger := memory.NewLedger(roster)
	cache := memory.NewSnapshotCache()
	catalog := memory.NewCatalog()
	store := memory.NewArtifactStore()
	locks := memory.NewGenerationLock()
	progressRepo := memory.NewProgressRepository()
	engine := aggregate.NewEngine(ledger, cache, roster, logger.Nop())
	renderer := render.NewTextRenderer(nil)
	flags := config.LoadFeatureFlags()

	deps := Dependencies{
		AppendGrade:           command.NewAppendGradeHandler(ledger, cache, logger.Nop()),
		GenerateStudentReport: command.NewGenerateStudentReportHandler(engine, roster, renderer, store, catalog, locks, true, logger.Nop()),
		GenerateClassReport:   command.NewGenerateClassReportHandler(engine, roster, renderer, store, catalog, locks, true, logger.Nop()),
		RecordProgress:        command.NewRecordProgressHandler(progressRepo),
		FlushSnapshotCache:    command.NewFlushSnapshotCacheHandler(cache, logger.Nop()),

		GetStudentAverage:  query.NewGetStudentAverageHandler(engine),
		GetStudentGrades:   query.NewGetStudentGradesHandler(ledger),
		GetClassStatistics: query.NewGetClassStatisticsHandler(engine, roster),
		ListReports:        query.NewListReportsHandler(catalog),
		GetReport:          query.NewGetReportHandler(catalog, store),
		GetTermOverview:    query.NewGetTermOverviewHandler(ledger, roster),
		GetTeacherProgress: query.NewGetTeacherProgressHandler(progressRepo),

		Features: flags,
		Logger:   logger.Nop(),
	}

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	server := NewServer(cfg, deps)

	return &serverFixture{
		server:  server,
		handler: server.httpServer.Handler,
		ledger:  ledger,
		roster:  roster,
		cache:   cache,
		catalog: catalog,
		store:   store,
		flags:   flags,
	}
}

func (f *serverFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAppendGradeEndpoint(t *testing.T) {
	f := newServerFixture()

	score := 15.5
	rec := f.do(t, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_id": studentAlice,
		"subject":    "Math",
		"term":       "T1",
		"score":      score,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, f.ledger.Len())
}

func TestAppendGradeEndpoint_Validation(t *testing.T) {
	f := newServerFixture()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing score", map[string]interface{}{"student_id": studentAlice, "subject": "Math", "term": "T1"}},
		{"score above scale", map[string]interface{}{"student_id": studentAlice, "subject": "Math", "term": "T1", "score": 20.5}},
		{"bad student id", map[string]interface{}{"student_id": "nope", "subject": "Math", "term": "T1", "score": 10}},
		{"unknown field", map[string]interface{}{"student_id": studentAlice, "subject": "Math", "term": "T1", "score": 10, "extra": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/grades", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
		})
	}
	assert.Equal(t, 0, f.ledger.Len())
}

func TestAppendGradeEndpoint_ZeroScoreAccepted(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_id": studentAlice,
		"subject":    "Math",
		"term":       "T1",
		"score":      0,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetStudentAverageEndpoint(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_id": studentAlice, "subject": "Math", "term": "T1", "score": 14,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/students/"+studentAlice+"/average?term=T1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"overall_average":14`)
}

func TestGetStudentAverageEndpoint_MissingTerm(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/students/"+studentAlice+"/average", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetClassStatisticsEndpoint_UnknownClass(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/classes/"+classID+"/statistics?term=T1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	f := newServerFixture()

	f.roster.AddStudent(studentAlice, "alice@digitschool.ci")
	rec := f.do(t, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_id": studentAlice, "subject": "Math", "term": "T1", "score": 17,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Generate.
	rec = f.do(t, http.MethodPost, "/api/v1/reports/student", map[string]interface{}{
		"student_id": studentAlice, "term": "T1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var generated struct {
		Data struct {
			State  string `json:"state"`
			Report struct {
				Locator string `json:"locator"`
			} `json:"report"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	assert.Equal(t, "COMPLETED", generated.Data.State)
	require.NotEmpty(t, generated.Data.Report.Locator)

	// List.
	rec = f.do(t, http.MethodGet, "/api/v1/reports?term=T1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), generated.Data.Report.Locator)

	// Download: raw text, not the JSON envelope.
	rec = f.do(t, http.MethodGet, "/api/v1/reports/"+generated.Data.Report.Locator, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), generated.Data.Report.Locator)
	assert.Contains(t, rec.Body.String(), "BULLETIN DE NOTES")
}

func TestGenerateStudentReportEndpoint_NoGrades(t *testing.T) {
	f := newServerFixture()

	f.roster.AddStudent(studentAlice, "alice@digitschool.ci")

	rec := f.do(t, http.MethodPost, "/api/v1/reports/student", map[string]interface{}{
		"student_id": studentAlice, "term": "T1",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.catalog.Len())
}

func TestGetReportEndpoint_Unknown(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/reports/bulletin_x_T1_1.txt", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassReportEndpoint_FeatureDisabled(t *testing.T) {
	f := newServerFixture()
	f.flags.Set(config.FeatureReportsClass, false)

	rec := f.do(t, http.MethodPost, "/api/v1/reports/class", map[string]interface{}{
		"class_id": classID, "term": "T1",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "feature_disabled", resp.Error.Code)
}

func TestProgressEndpoints(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/progress", map[string]interface{}{
		"teacher_id":       teacherID,
		"class_id":         classID,
		"coverage_percent": 42.5,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The upsert is visible through the read endpoint.
	rec = f.do(t, http.MethodGet, "/api/v1/teachers/"+teacherID+"/progress", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), classID)
	assert.Contains(t, rec.Body.String(), "42.5")

	rec = f.do(t, http.MethodPost, "/api/v1/progress", map[string]interface{}{
		"teacher_id":       teacherID,
		"class_id":         classID,
		"coverage_percent": 120,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlushSnapshotCacheEndpoint(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_id": studentAlice, "subject": "Math", "term": "T1", "score": 14,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Warm the cache through a read.
	rec = f.do(t, http.MethodGet, "/api/v1/students/"+studentAlice+"/average?term=T1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.cache.Contains(grade.CacheKey(studentAlice, "T1")))

	rec = f.do(t, http.MethodPost, "/api/v1/admin/cache/flush", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.False(t, f.cache.Contains(grade.CacheKey(studentAlice, "T1")))
}

func TestHealthEndpoints(t *testing.T) {
	f := newServerFixture()

	for _, path := range []string{"/health", "/healthz", "/live"} {
		rec := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestHealthEndpoint_DegradedOnFailingProbe(t *testing.T) {
	f := newServerFixture()
	f.server.deps.Pinger = func(context.Context) error { return fmt.Errorf("down") }

	rec := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestRequestIDPropagation(t *testing.T) {
	f := newServerFixture()

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	// Absent header: one is generated.
	rec = f.do(t, http.MethodGet, "/live", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimiting(t *testing.T) {
	roster := memory.NewRoster()
	ledger := memory.NewLedger(roster)
	cache := memory.NewSnapshotCache()

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 2
	server := NewServer(cfg, Dependencies{
		GetStudentGrades: query.NewGetStudentGradesHandler(ledger),
		AppendGrade:      command.NewAppendGradeHandler(ledger, cache, logger.Nop()),
		Logger:           logger.Nop(),
	})

	handler := server.httpServer.Handler
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
