package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/memory"
)

const (
	studentAlice = "3b38923e-34b5-4f2c-9a19-5b6a3c0d2f41"
	studentBob   = "9f2c61ab-7c55-4a0e-8f3d-1e2b3c4d5e6f"
	classID      = "7a1d2e3f-4b5c-4d6e-8f90-a1b2c3d4e5f6"
)

type queryFixture struct {
	ledger  *memory.Ledger
	roster  *memory.Roster
	cache   *memory.SnapshotCache
	catalog *memory.Catalog
	store   *memory.ArtifactStore
	engine  *aggregate.Engine
}

func newQueryFixture() *queryFixture {
	r := memory.NewRoster()
	l := memory.NewLedger(r)
	c := memory.NewSnapshotCache()
	return &queryFixture{
		ledger:  l,
		roster:  r,
		cache:   c,
		catalog: memory.NewCatalog(),
		store:   memory.NewArtifactStore(),
		engine:  aggregate.NewEngine(l, c, r, nil),
	}
}

func (f *queryFixture) append(t *testing.T, studentID, subject, term string, score float64) {
	t.Helper()
	rec, err := grade.NewRecord(studentID, subject, term, score)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Append(context.Background(), rec))
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentGrades
// ─────────────────────────────────────────────────────────────────────────────

func TestGetStudentGrades_NewestFirst(t *testing.T) {
	f := newQueryFixture()

	f.append(t, studentAlice, "Math", "T1", 10)
	f.append(t, studentAlice, "French", "T1", 12)

	result, err := NewGetStudentGradesHandler(f.ledger).Handle(context.Background(), GetStudentGradesQuery{
		StudentID: studentAlice,
		Term:      "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "French", result.Grades[0].Subject)
	assert.Equal(t, "Math", result.Grades[1].Subject)
}

func TestGetStudentGrades_EmptyTermMatchesAll(t *testing.T) {
	f := newQueryFixture()

	f.append(t, studentAlice, "Math", "T1", 10)
	f.append(t, studentAlice, "Math", "T2", 14)

	result, err := NewGetStudentGradesHandler(f.ledger).Handle(context.Background(), GetStudentGradesQuery{
		StudentID: studentAlice,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func TestGetStudentGrades_NoGradesIsEmptyNotError(t *testing.T) {
	f := newQueryFixture()

	result, err := NewGetStudentGradesHandler(f.ledger).Handle(context.Background(), GetStudentGradesQuery{
		StudentID: studentAlice,
		Term:      "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Grades)
	assert.Empty(t, result.Grades)
}

func TestGetStudentGrades_InvalidStudent(t *testing.T) {
	f := newQueryFixture()

	_, err := NewGetStudentGradesHandler(f.ledger).Handle(context.Background(), GetStudentGradesQuery{
		StudentID: "42",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidStudent)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentAverage
// ─────────────────────────────────────────────────────────────────────────────

func TestGetStudentAverage(t *testing.T) {
	f := newQueryFixture()

	f.append(t, studentAlice, "Math", "T1", 11)
	f.append(t, studentAlice, "Math", "T1", 13)

	result, err := NewGetStudentAverageHandler(f.engine).Handle(context.Background(), GetStudentAverageQuery{
		StudentID: studentAlice,
		Term:      "T1",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Snapshot.OverallAverage)
	assert.Equal(t, 12.0, *result.Snapshot.OverallAverage)
	assert.Equal(t, "Bien", result.Snapshot.Orientation)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetClassStatistics
// ─────────────────────────────────────────────────────────────────────────────

func TestGetClassStatistics(t *testing.T) {
	f := newQueryFixture()

	f.roster.AddClass(&roster.Class{ID: classID, Name: "Terminale C", Level: "Terminale"})
	f.roster.Enroll(classID, studentAlice, "alice@digitschool.ci")
	f.append(t, studentAlice, "Math", "T1", 15)

	result, err := NewGetClassStatisticsHandler(f.engine, f.roster).Handle(context.Background(), GetClassStatisticsQuery{
		ClassID: classID,
		Term:    "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Terminale C", result.Class.Name)
	require.Len(t, result.Students, 1)
	assert.Equal(t, 15.0, *result.Students[0].Average)
	assert.Equal(t, 1, result.Summary.GradedCount)
}

func TestGetClassStatistics_UnknownClass(t *testing.T) {
	f := newQueryFixture()

	_, err := NewGetClassStatisticsHandler(f.engine, f.roster).Handle(context.Background(), GetClassStatisticsQuery{
		ClassID: classID,
		Term:    "T1",
	})

	assert.ErrorIs(t, err, shared.ErrClassNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Report catalog queries
// ─────────────────────────────────────────────────────────────────────────────

func catalogArtifact(t *testing.T, f *queryFixture, kind report.Kind, subjectID, term string, generatedAt time.Time, content string) *report.Artifact {
	t.Helper()
	ctx := context.Background()
	artifact := report.NewArtifact(kind, subjectID, shared.Term(term), generatedAt)
	require.NoError(t, f.store.Save(ctx, artifact.Locator, []byte(content)))
	require.NoError(t, f.catalog.Record(ctx, artifact))
	return artifact
}

func TestListReports_NewestFirstWithFilters(t *testing.T) {
	f := newQueryFixture()
	base := time.Now().UTC()

	catalogArtifact(t, f, report.KindStudent, studentAlice, "T1", base.Add(-2*time.Hour), "old")
	catalogArtifact(t, f, report.KindStudent, studentAlice, "T2", base.Add(-time.Hour), "mid")
	newest := catalogArtifact(t, f, report.KindStudent, studentBob, "T1", base, "new")

	handler := NewListReportsHandler(f.catalog)

	all, err := handler.Handle(context.Background(), ListReportsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, newest.Locator, all.Reports[0].Locator)

	bySubject, err := handler.Handle(context.Background(), ListReportsQuery{SubjectID: studentAlice})
	require.NoError(t, err)
	assert.Equal(t, 2, bySubject.Count)

	byBoth, err := handler.Handle(context.Background(), ListReportsQuery{SubjectID: studentAlice, Term: "T1"})
	require.NoError(t, err)
	assert.Equal(t, 1, byBoth.Count)
}

func TestGetReport_ReturnsContent(t *testing.T) {
	f := newQueryFixture()

	artifact := catalogArtifact(t, f, report.KindStudent, studentAlice, "T1", time.Now().UTC(), "bulletin body")

	result, err := NewGetReportHandler(f.catalog, f.store).Handle(context.Background(), GetReportQuery{
		Locator: artifact.Locator,
	})

	require.NoError(t, err)
	assert.Equal(t, artifact.Locator, result.Artifact.Locator)
	assert.Equal(t, "bulletin body", string(result.Content))
}

func TestGetReport_UncatalogedFileIsNotServed(t *testing.T) {
	f := newQueryFixture()
	ctx := context.Background()

	// Bytes exist in the store but were never cataloged.
	require.NoError(t, f.store.Save(ctx, "stray.txt", []byte("should stay hidden")))

	_, err := NewGetReportHandler(f.catalog, f.store).Handle(ctx, GetReportQuery{Locator: "stray.txt"})

	assert.ErrorIs(t, err, shared.ErrReportNotFound)
}

func TestGetReport_MissingBytes(t *testing.T) {
	f := newQueryFixture()
	ctx := context.Background()

	artifact := report.NewArtifact(report.KindStudent, studentAlice, "T1", time.Now().UTC())
	require.NoError(t, f.catalog.Record(ctx, artifact))

	_, err := NewGetReportHandler(f.catalog, f.store).Handle(ctx, GetReportQuery{Locator: artifact.Locator})

	assert.ErrorIs(t, err, shared.ErrArtifactNotFound)
}

func TestGetReport_EmptyLocator(t *testing.T) {
	f := newQueryFixture()

	_, err := NewGetReportHandler(f.catalog, f.store).Handle(context.Background(), GetReportQuery{})

	assert.True(t, shared.IsValidation(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// GetTermOverview
// ─────────────────────────────────────────────────────────────────────────────

func TestGetTermOverview(t *testing.T) {
	f := newQueryFixture()

	f.roster.AddStudent(studentAlice, "alice@digitschool.ci")
	f.roster.AddStudent(studentBob, "bob@digitschool.ci")
	f.append(t, studentAlice, "Math", "T1", 17)
	f.append(t, studentAlice, "French", "T1", 15)
	f.append(t, studentBob, "Math", "T1", 8)
	f.append(t, studentBob, "Math", "T2", 19) // other term, excluded

	result, err := NewGetTermOverviewHandler(f.ledger, f.roster).Handle(context.Background(), GetTermOverviewQuery{
		Term: "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, "T1", result.Term)
	assert.Equal(t, 2, result.GradedStudents)
	assert.Equal(t, 3, result.TotalGrades)
	assert.Equal(t, 2, result.DistinctSubjects)
	require.NotNil(t, result.TermAverage)
	assert.Equal(t, 12.0, *result.TermAverage) // mean of 16.00 and 8.00

	// Every band appears in the distribution, graded ones counted.
	assert.Equal(t, 1, result.BandCounts["Excellent"])
	assert.Equal(t, 1, result.BandCounts["Insuffisant"])
	assert.Equal(t, 0, result.BandCounts["Bien"])
	assert.Len(t, result.BandCounts, 5)

	require.Len(t, result.TopPerformers, 2)
	assert.Equal(t, studentAlice, result.TopPerformers[0].StudentID)
	assert.Equal(t, "alice@digitschool.ci", result.TopPerformers[0].StudentEmail)
	assert.Equal(t, studentBob, result.TopPerformers[1].StudentID)
}

func TestGetTermOverview_EmptyTermRejected(t *testing.T) {
	f := newQueryFixture()

	_, err := NewGetTermOverviewHandler(f.ledger, f.roster).Handle(context.Background(), GetTermOverviewQuery{})

	assert.ErrorIs(t, err, shared.ErrEmptyTerm)
}

func TestGetTermOverview_NoGrades(t *testing.T) {
	f := newQueryFixture()

	result, err := NewGetTermOverviewHandler(f.ledger, f.roster).Handle(context.Background(), GetTermOverviewQuery{
		Term: "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.GradedStudents)
	assert.Nil(t, result.TermAverage)
	assert.Empty(t, result.TopPerformers)
	assert.Len(t, result.BandCounts, 5)
}
