package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/digitschool/academic-core/config"
	"github.com/digitschool/academic-core/internal/application/command"
	"github.com/digitschool/academic-core/internal/application/query"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot returns basic service information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "academic-core",
		"version": "v1",
		"status":  "operational",
	})
}

// handleHealth returns overall service health, probing the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	if s.deps.Pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Pinger(ctx); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			s.logger.Warn("health probe failed", logger.Err(err))
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int(s.Uptime().Seconds()),
	})
}

// handleReady indicates if the server is ready to accept traffic.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.IsRunning() {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Server is not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive indicates if the server process is alive.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type appendGradeRequest struct {
	StudentID string   `json:"student_id" validate:"required,uuid"`
	Subject   string   `json:"subject" validate:"required"`
	Term      string   `json:"term" validate:"required"`
	Score     *float64 `json:"score" validate:"required,gte=0,lte=20"`
}

// handleAppendGrade records a grade for a student.
// POST /api/v1/grades
func (s *Server) handleAppendGrade(w http.ResponseWriter, r *http.Request) {
	var req appendGradeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.AppendGrade.Handle(r.Context(), command.AppendGradeCommand{
		StudentID: req.StudentID,
		Subject:   req.Subject,
		Term:      req.Term,
		Score:     *req.Score,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetStudentGrades lists a student's grades, newest first.
// GET /api/v1/students/{id}/grades?term=T1
func (s *Server) handleGetStudentGrades(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetStudentGrades.Handle(r.Context(), query.GetStudentGradesQuery{
		StudentID: r.PathValue("id"),
		Term:      r.URL.Query().Get("term"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetStudentAverage returns the aggregate snapshot for a student/term.
// GET /api/v1/students/{id}/average?term=T1
func (s *Server) handleGetStudentAverage(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetStudentAverage.Handle(r.Context(), query.GetStudentAverageQuery{
		StudentID: r.PathValue("id"),
		Term:      r.URL.Query().Get("term"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetClassStatistics returns per-student statistics for a class/term.
// GET /api/v1/classes/{id}/statistics?term=T1
func (s *Server) handleGetClassStatistics(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetClassStatistics.Handle(r.Context(), query.GetClassStatisticsQuery{
		ClassID: r.PathValue("id"),
		Term:    r.URL.Query().Get("term"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetTermOverview returns term-wide statistics.
// GET /api/v1/overview?term=T1
func (s *Server) handleGetTermOverview(w http.ResponseWriter, r *http.Request) {
	if !s.featureEnabled(w, config.FeatureTermOverview) {
		return
	}

	result, err := s.deps.GetTermOverview.Handle(r.Context(), query.GetTermOverviewQuery{
		Term: r.URL.Query().Get("term"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type generateStudentReportRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Term      string `json:"term" validate:"required"`
}

// handleGenerateStudentReport generates an individual bulletin.
// POST /api/v1/reports/student
func (s *Server) handleGenerateStudentReport(w http.ResponseWriter, r *http.Request) {
	var req generateStudentReportRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.GenerateStudentReport.Handle(r.Context(), command.GenerateStudentReportCommand{
		StudentID: req.StudentID,
		Term:      req.Term,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type generateClassReportRequest struct {
	ClassID string `json:"class_id" validate:"required,uuid"`
	Term    string `json:"term" validate:"required"`
}

// handleGenerateClassReport generates a roster-wide class report.
// POST /api/v1/reports/class
func (s *Server) handleGenerateClassReport(w http.ResponseWriter, r *http.Request) {
	if !s.featureEnabled(w, config.FeatureReportsClass) {
		return
	}

	var req generateClassReportRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.GenerateClassReport.Handle(r.Context(), command.GenerateClassReportCommand{
		ClassID: req.ClassID,
		Term:    req.Term,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListReports lists cataloged reports, newest first.
// GET /api/v1/reports?subject_id=...&term=T1
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListReports.Handle(r.Context(), query.ListReportsQuery{
		SubjectID: r.URL.Query().Get("subject_id"),
		Term:      r.URL.Query().Get("term"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetReport serves a stored report document by locator.
// GET /api/v1/reports/{locator}
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetReport.Handle(r.Context(), query.GetReportQuery{
		Locator: r.PathValue("locator"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Artifact.Locator))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Content)
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordProgressRequest struct {
	TeacherID       string   `json:"teacher_id" validate:"required,uuid"`
	ClassID         string   `json:"class_id" validate:"required,uuid"`
	CoveragePercent *float64 `json:"coverage_percent" validate:"required,gte=0,lte=100"`
}

// handleRecordProgress upserts a teacher's curriculum coverage for a class.
// POST /api/v1/progress
func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	if !s.featureEnabled(w, config.FeatureTeacherProgress) {
		return
	}

	var req recordProgressRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.RecordProgress.Handle(r.Context(), command.RecordProgressCommand{
		TeacherID:       req.TeacherID,
		ClassID:         req.ClassID,
		CoveragePercent: *req.CoveragePercent,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetTeacherProgress lists a teacher's coverage entries, newest first.
// GET /api/v1/teachers/{id}/progress
func (s *Server) handleGetTeacherProgress(w http.ResponseWriter, r *http.Request) {
	if !s.featureEnabled(w, config.FeatureTeacherProgress) {
		return
	}

	result, err := s.deps.GetTeacherProgress.Handle(r.Context(), query.GetTeacherProgressQuery{
		TeacherID: r.PathValue("id"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleFlushSnapshotCache clears the aggregate snapshot cache, forcing
// every subsequent read to recompute from the ledger. For operators,
// after bulk imports that bypass the append path.
// POST /api/v1/admin/cache/flush
func (s *Server) handleFlushSnapshotCache(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.FlushSnapshotCache.Handle(r.Context(), command.FlushSnapshotCacheCommand{})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.logger.Info("snapshot cache flushed via API",
		logger.String("request_id", getRequestID(r.Context())),
		logger.String("user_id", getUserID(r.Context())),
	)
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST & ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeAndValidate parses the JSON body into dst and validates it.
// Returns false after writing the error response.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON: "+err.Error())
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			msg := fmt.Sprintf("Field %q failed validation (%s)", first.Field(), first.Tag())
			writeJSONError(w, http.StatusBadRequest, "validation_error", msg)
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}

	return true
}

// featureEnabled writes 403 and returns false when the flag is off.
func (s *Server) featureEnabled(w http.ResponseWriter, flag string) bool {
	if s.deps.Features != nil && !s.deps.Features.IsEnabled(flag) {
		writeJSONError(w, http.StatusForbidden, "feature_disabled", "This feature is not enabled")
		return false
	}
	return true
}

// handleError maps domain errors to HTTP status codes.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())

	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())

	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())

	case shared.IsDependencyUnavailable(err):
		s.logger.Error("dependency unavailable",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusServiceUnavailable, "dependency_unavailable", "A backing service is unavailable, please retry")

	default:
		s.logger.Error("unhandled error",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
