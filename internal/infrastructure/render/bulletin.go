// Package render produces the report documents. The layout is plain
// text with a fixed structure: rendering the same aggregate twice
// yields byte-identical output except for the generation timestamp.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

const (
	headerTitle    = "DIGITSCHOOL"
	headerSubtitle = "Plateforme de gestion scolaire"
	lineWidth      = 64
	dateLayout     = "02/01/2006 15:04"
)

// TextRenderer renders bulletins and class reports as plain text.
// Timestamps on the documents are formatted in the school's timezone.
type TextRenderer struct {
	loc *time.Location
}

// NewTextRenderer creates a renderer. A nil location formats dates in UTC.
func NewTextRenderer(loc *time.Location) *TextRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &TextRenderer{loc: loc}
}

func (r *TextRenderer) formatDate(t time.Time) string {
	return t.In(r.loc).Format(dateLayout)
}

// RenderStudentBulletin renders an individual bulletin: the subject
// breakdown, the overall average out of 20 and the orientation band.
func (r *TextRenderer) RenderStudentBulletin(studentEmail string, snap *grade.Snapshot, generatedAt time.Time) []byte {
	var b strings.Builder

	writeHeader(&b)
	b.WriteString("BULLETIN DE NOTES\n\n")
	fmt.Fprintf(&b, "%-12s %s\n", "Élève :", studentEmail)
	fmt.Fprintf(&b, "%-12s %s\n", "Trimestre :", snap.Term)
	fmt.Fprintf(&b, "%-12s %s\n\n", "Édité le :", r.formatDate(generatedAt))

	fmt.Fprintf(&b, "%-44s %10s\n", "MATIÈRE", "MOYENNE")
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for _, subject := range snap.SubjectNames() {
		fmt.Fprintf(&b, "%-44s %10.2f\n", subject, snap.Subjects[subject])
	}
	b.WriteString(strings.Repeat("-", lineWidth) + "\n\n")

	if snap.OverallAverage != nil {
		fmt.Fprintf(&b, "MOYENNE GÉNÉRALE : %.2f/20\n", *snap.OverallAverage)
		fmt.Fprintf(&b, "Orientation      : %s\n", snap.Orientation)
	} else {
		b.WriteString("MOYENNE GÉNÉRALE : --\n")
	}
	fmt.Fprintf(&b, "Notes prises en compte : %d\n", snap.TotalGrades)

	writeFooter(&b)
	return []byte(b.String())
}

// RenderClassReport renders the roster-wide report: one row per
// enrolled student in statistics order, then the class summary.
func (r *TextRenderer) RenderClassReport(class *roster.Class, term shared.Term, stats []aggregate.StudentStatistics, summary aggregate.ClassSummary, generatedAt time.Time) []byte {
	var b strings.Builder

	writeHeader(&b)
	b.WriteString("RAPPORT DE CLASSE\n\n")
	fmt.Fprintf(&b, "%-12s %s", "Classe :", class.Name)
	if class.Level != "" {
		fmt.Fprintf(&b, " (%s)", class.Level)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-12s %s\n", "Trimestre :", term)
	fmt.Fprintf(&b, "%-12s %s\n\n", "Édité le :", r.formatDate(generatedAt))

	fmt.Fprintf(&b, "%-4s %-34s %8s %6s  %s\n", "#", "ÉLÈVE", "MOYENNE", "NOTES", "ORIENTATION")
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for i, row := range stats {
		avg := "--"
		if row.Average != nil {
			avg = fmt.Sprintf("%.2f", *row.Average)
		}
		fmt.Fprintf(&b, "%-4d %-34s %8s %6d  %s\n", i+1, row.StudentEmail, avg, row.TotalGrades, row.Orientation)
	}
	b.WriteString(strings.Repeat("-", lineWidth) + "\n\n")

	fmt.Fprintf(&b, "Effectif        : %d\n", summary.EnrolledCount)
	fmt.Fprintf(&b, "Élèves notés    : %d\n", summary.GradedCount)
	if summary.ClassAverage != nil {
		fmt.Fprintf(&b, "Moyenne de classe : %.2f/20\n", *summary.ClassAverage)
	} else {
		b.WriteString("Moyenne de classe : --\n")
	}

	writeFooter(&b)
	return []byte(b.String())
}

func writeHeader(b *strings.Builder) {
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")
	b.WriteString(center(headerTitle) + "\n")
	b.WriteString(center(headerSubtitle) + "\n")
	b.WriteString(strings.Repeat("=", lineWidth) + "\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("\n" + strings.Repeat("=", lineWidth) + "\n")
	b.WriteString(center("Document généré par DigitSchool") + "\n")
}

func center(s string) string {
	pad := (lineWidth - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
