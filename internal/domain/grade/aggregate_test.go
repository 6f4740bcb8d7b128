package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

func record(t *testing.T, studentID, subject, term string, score float64) *Record {
	t.Helper()
	r, err := NewRecord(studentID, subject, term, score)
	require.NoError(t, err)
	return r
}

const testStudent = "3b38923e-34b5-4f2c-9a19-5b6a3c0d2f41"

func TestSummarize_SingleRecordPerSubject(t *testing.T) {
	records := []*Record{
		record(t, testStudent, "Math", "T1", 15.5),
		record(t, testStudent, "French", "T1", 14.0),
		record(t, testStudent, "History", "T1", 16.0),
	}

	summary := Summarize(records)

	require.NotNil(t, summary.OverallAverage)
	assert.Equal(t, 15.17, *summary.OverallAverage)
	assert.Equal(t, 3, summary.TotalGrades)
	assert.Equal(t, 15.5, summary.Subjects["Math"])
	assert.Equal(t, 14.0, summary.Subjects["French"])
	assert.Equal(t, 16.0, summary.Subjects["History"])

	band, ok := summary.Orientation()
	require.True(t, ok)
	assert.Equal(t, "Très bien", band.String())
}

func TestSummarize_OverallIsRecordWeighted(t *testing.T) {
	// Three Math records and one French record: the overall mean weighs
	// each record equally, it is not the mean of the two subject means.
	records := []*Record{
		record(t, testStudent, "Math", "T1", 10),
		record(t, testStudent, "Math", "T1", 10),
		record(t, testStudent, "Math", "T1", 10),
		record(t, testStudent, "French", "T1", 20),
	}

	summary := Summarize(records)

	require.NotNil(t, summary.OverallAverage)
	assert.Equal(t, 12.5, *summary.OverallAverage) // (10+10+10+20)/4, not (10+20)/2
	assert.Equal(t, 10.0, summary.Subjects["Math"])
	assert.Equal(t, 20.0, summary.Subjects["French"])
}

func TestSummarize_EmptySliceHasNoAverage(t *testing.T) {
	summary := Summarize(nil)

	assert.Nil(t, summary.OverallAverage)
	assert.Equal(t, 0, summary.TotalGrades)
	assert.Empty(t, summary.Subjects)

	_, ok := summary.Orientation()
	assert.False(t, ok)
}

func TestSummarize_Idempotent(t *testing.T) {
	records := []*Record{
		record(t, testStudent, "Math", "T1", 13.33),
		record(t, testStudent, "Math", "T1", 17.77),
		record(t, testStudent, "Physics", "T1", 9.99),
	}

	first := Summarize(records)
	second := Summarize(records)

	require.NotNil(t, first.OverallAverage)
	require.NotNil(t, second.OverallAverage)
	assert.Equal(t, *first.OverallAverage, *second.OverallAverage)
	assert.Equal(t, first.Subjects, second.Subjects)

	firstBand, _ := first.Orientation()
	secondBand, _ := second.Orientation()
	assert.Equal(t, firstBand, secondBand)
}

func TestSummary_SubjectNamesSorted(t *testing.T) {
	records := []*Record{
		record(t, testStudent, "Physics", "T1", 12),
		record(t, testStudent, "Art", "T1", 12),
		record(t, testStudent, "Math", "T1", 12),
	}

	summary := Summarize(records)
	assert.Equal(t, []string{"Art", "Math", "Physics"}, summary.SubjectNames())
}

func TestNewRecord_Validation(t *testing.T) {
	tests := []struct {
		name      string
		studentID string
		subject   string
		term      string
		score     float64
		wantErr   error
	}{
		{"valid", testStudent, "Math", "T1", 15, nil},
		{"score at lower bound", testStudent, "Math", "T1", 0, nil},
		{"score at upper bound", testStudent, "Math", "T1", 20, nil},
		{"score below range", testStudent, "Math", "T1", -0.5, shared.ErrValueOutOfRange},
		{"score above range", testStudent, "Math", "T1", 20.5, shared.ErrValueOutOfRange},
		{"malformed student id", "not-a-uuid", "Math", "T1", 10, shared.ErrInvalidID},
		{"empty subject", testStudent, "  ", "T1", 10, shared.ErrEmptyValue},
		{"empty term", testStudent, "Math", "", 10, shared.ErrEmptyValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRecord(tt.studentID, tt.subject, tt.term, tt.score)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, tt.score, r.Score.Float64())
			assert.False(t, r.CreatedAt.IsZero())
		})
	}
}

func TestCacheKey_Format(t *testing.T) {
	key := CacheKey(testStudent, shared.Term("T1"))
	assert.Equal(t, "grades:"+testStudent+":T1", key)
}

func TestNewSnapshot_CarriesOrientation(t *testing.T) {
	records := []*Record{
		record(t, testStudent, "Math", "T1", 16),
	}

	snap := NewSnapshot(testStudent, shared.Term("T1"), records)

	require.NotNil(t, snap.OverallAverage)
	assert.Equal(t, 16.0, *snap.OverallAverage)
	assert.Equal(t, "Excellent", snap.Orientation)
	assert.False(t, snap.ComputedAt.IsZero())
}

func TestNewSnapshot_EmptyLedgerSlice(t *testing.T) {
	snap := NewSnapshot(testStudent, shared.Term("T1"), nil)

	assert.Nil(t, snap.OverallAverage)
	assert.Equal(t, 0, snap.TotalGrades)
	assert.Empty(t, snap.Orientation)
}
