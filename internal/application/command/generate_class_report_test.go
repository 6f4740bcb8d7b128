package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/internal/infrastructure/render"
)

const classTerminaleC = "7a1d2e3f-4b5c-4d6e-8f90-a1b2c3d4e5f6"

func (f *reportFixture) classHandler(allowDuplicates bool) *GenerateClassReportHandler {
	return NewGenerateClassReportHandler(
		f.engine, f.roster, render.NewTextRenderer(nil), f.store, f.catalog, f.locks, allowDuplicates, nil)
}

func (f *reportFixture) addClass(name string) {
	f.roster.AddClass(&roster.Class{
		ID:        classTerminaleC,
		Name:      name,
		Level:     "Terminale",
		CreatedAt: time.Now().UTC(),
	})
}

func TestGenerateClassReport_HappyPath(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.addClass("Terminale C")
	f.roster.Enroll(classTerminaleC, studentAlice, "alice@digitschool.ci")
	f.roster.Enroll(classTerminaleC, studentBob, "bob@digitschool.ci")
	f.addGrade(t, studentAlice, "Math", "T1", 18)
	f.addGrade(t, studentBob, "Math", "T1", 9)

	result, err := f.classHandler(true).Handle(ctx, GenerateClassReportCommand{
		ClassID: classTerminaleC,
		Term:    "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, report.StateCompleted, result.State)
	require.NotNil(t, result.Artifact)
	assert.Equal(t, report.KindClass, result.Artifact.Kind)
	assert.True(t, strings.HasPrefix(result.Artifact.Locator, "rapport_classe_"+classTerminaleC+"_T1_"))

	require.NotNil(t, result.Summary)
	assert.Equal(t, 2, result.Summary.EnrolledCount)
	assert.Equal(t, 2, result.Summary.GradedCount)
	require.NotNil(t, result.Summary.ClassAverage)
	assert.Equal(t, 13.5, *result.Summary.ClassAverage)

	content, err := f.store.Load(ctx, result.Artifact.Locator)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "Terminale C")
	assert.Contains(t, text, "alice@digitschool.ci")
	assert.Contains(t, text, "bob@digitschool.ci")
	// Best average first.
	assert.Less(t, strings.Index(text, "alice@digitschool.ci"), strings.Index(text, "bob@digitschool.ci"))
}

func TestGenerateClassReport_UngradedStudentsAppearWithNoAverage(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.addClass("Terminale C")
	f.roster.Enroll(classTerminaleC, studentAlice, "alice@digitschool.ci")
	f.roster.Enroll(classTerminaleC, studentBob, "bob@digitschool.ci")
	f.addGrade(t, studentAlice, "Math", "T1", 14)

	result, err := f.classHandler(true).Handle(ctx, GenerateClassReportCommand{
		ClassID: classTerminaleC,
		Term:    "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.EnrolledCount)
	assert.Equal(t, 1, result.Summary.GradedCount)

	content, err := f.store.Load(ctx, result.Artifact.Locator)
	require.NoError(t, err)
	assert.Contains(t, string(content), "bob@digitschool.ci")
	assert.Contains(t, string(content), "--")
}

func TestGenerateClassReport_UnknownClass(t *testing.T) {
	f := newReportFixture()

	result, err := f.classHandler(true).Handle(context.Background(), GenerateClassReportCommand{
		ClassID: classTerminaleC,
		Term:    "T1",
	})

	require.ErrorIs(t, err, shared.ErrClassNotFound)
	require.NotNil(t, result)
	assert.Equal(t, report.StateFailedNotFound, result.State)
	assert.Equal(t, 0, f.catalog.Len())
}

func TestGenerateClassReport_EmptyRoster(t *testing.T) {
	f := newReportFixture()

	f.addClass("Terminale C")

	result, err := f.classHandler(true).Handle(context.Background(), GenerateClassReportCommand{
		ClassID: classTerminaleC,
		Term:    "T1",
	})

	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, report.StateFailedNotFound, result.State)
	assert.Equal(t, 0, f.store.Len())
}

func TestGenerateClassReport_CatalogDownFailsDuplicateCheck(t *testing.T) {
	f := newReportFixture()

	f.addClass("Terminale C")
	f.roster.Enroll(classTerminaleC, studentAlice, "alice@digitschool.ci")
	f.addGrade(t, studentAlice, "Math", "T1", 12)
	f.catalog.ListErr = assert.AnError

	_, err := f.classHandler(false).Handle(context.Background(), GenerateClassReportCommand{
		ClassID: classTerminaleC,
		Term:    "T1",
	})

	require.Error(t, err)
	assert.True(t, shared.IsDependencyUnavailable(err))
	assert.Equal(t, 0, f.store.Len())
}

func TestGenerateClassReport_ConcurrentGenerationConflicts(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.addClass("Terminale C")
	f.roster.Enroll(classTerminaleC, studentAlice, "alice@digitschool.ci")
	f.addGrade(t, studentAlice, "Math", "T1", 12)

	held, err := f.locks.Acquire(ctx, report.LockName(report.KindClass, classTerminaleC, "T1"), report.GenerationLockTTL)
	require.NoError(t, err)
	require.True(t, held)

	_, err = f.classHandler(true).Handle(ctx, GenerateClassReportCommand{
		ClassID: classTerminaleC,
		Term:    "T1",
	})

	require.ErrorIs(t, err, shared.ErrGenerationInProgress)
	assert.Equal(t, 0, f.catalog.Len())
}

func TestGenerateClassReport_DuplicateSuppressed(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.addClass("Terminale C")
	f.roster.Enroll(classTerminaleC, studentAlice, "alice@digitschool.ci")
	f.addGrade(t, studentAlice, "Math", "T1", 12)

	handler := f.classHandler(false)

	first, err := handler.Handle(ctx, GenerateClassReportCommand{ClassID: classTerminaleC, Term: "T1"})
	require.NoError(t, err)
	second, err := handler.Handle(ctx, GenerateClassReportCommand{ClassID: classTerminaleC, Term: "T1"})
	require.NoError(t, err)

	assert.Equal(t, first.Artifact.Locator, second.Artifact.Locator)
	assert.Equal(t, 1, f.catalog.Len())
}
