// Package postgres implements PostgreSQL persistence for the academic core.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE ROSTER
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create roster tables
-- Version: 001

-- Students known to the platform. The academic core only needs identity
-- and the email embedded in report locators.
CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    full_name VARCHAR(200) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_students_email ON students(email);

-- Classes (homerooms)
CREATE TABLE IF NOT EXISTS classes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    level VARCHAR(50) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Class membership; enrolled_at drives the stable tie-break ordering of
-- class statistics.
CREATE TABLE IF NOT EXISTS class_members (
    class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (class_id, student_id)
);

CREATE INDEX IF NOT EXISTS idx_class_members_class ON class_members(class_id, enrolled_at);
CREATE INDEX IF NOT EXISTS idx_class_members_student ON class_members(student_id);
`

const migration001Down = `
DROP TABLE IF EXISTS class_members;
DROP TABLE IF EXISTS classes;
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE GRADES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create grade ledger
-- Version: 002

-- Append-only grade ledger. Rows are never updated or deleted;
-- corrections are appended as new rows and change the aggregate.
CREATE TABLE IF NOT EXISTS grades (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    subject VARCHAR(100) NOT NULL,
    term VARCHAR(50) NOT NULL,
    score NUMERIC(4,2) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_score CHECK (score >= 0 AND score <= 20),
    CONSTRAINT nonempty_subject CHECK (subject <> ''),
    CONSTRAINT nonempty_term CHECK (term <> '')
);

CREATE INDEX IF NOT EXISTS idx_grades_student_term ON grades(student_id, term);
CREATE INDEX IF NOT EXISTS idx_grades_term ON grades(term);
CREATE INDEX IF NOT EXISTS idx_grades_created_at ON grades(created_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS grades;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE REPORTS AND PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create report catalog and teacher progress
-- Version: 003

-- Catalog of generated report artifacts. Entries are immutable; the
-- locator doubles as the storage path and the retrieval key.
CREATE TABLE IF NOT EXISTS generated_reports (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    kind VARCHAR(20) NOT NULL,
    subject_id UUID NOT NULL,
    term VARCHAR(50) NOT NULL,
    locator VARCHAR(500) NOT NULL UNIQUE,
    generated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_kind CHECK (kind IN ('student', 'class'))
);

CREATE INDEX IF NOT EXISTS idx_generated_reports_subject ON generated_reports(subject_id, term);
CREATE INDEX IF NOT EXISTS idx_generated_reports_generated_at ON generated_reports(generated_at DESC);

-- Curriculum coverage per teacher/class pair, updated in place.
CREATE TABLE IF NOT EXISTS teacher_progress (
    teacher_id UUID NOT NULL,
    class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
    coverage_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (teacher_id, class_id),
    CONSTRAINT valid_coverage CHECK (coverage_percent >= 0 AND coverage_percent <= 100)
);

CREATE INDEX IF NOT EXISTS idx_teacher_progress_teacher ON teacher_progress(teacher_id, updated_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS teacher_progress;
DROP TABLE IF EXISTS generated_reports;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_roster",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_grades",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_reports_and_progress",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
