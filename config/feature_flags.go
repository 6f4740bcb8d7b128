package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles for the academic core. Defaults
// are safe for production; environment variables override per flag.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	// FeatureReportsAllowDuplicates permits generating a new report for a
	// student/term or class/term pair that already has one. When off, the
	// existing catalog entry is returned instead.
	FeatureReportsAllowDuplicates = "reports.allow_duplicates"

	// FeatureReportsClass enables roster-wide class reports.
	FeatureReportsClass = "reports.class"

	// FeatureTermOverview enables the term-wide statistics endpoint.
	FeatureTermOverview = "overview.term"

	// FeatureTeacherProgress enables curriculum coverage tracking.
	FeatureTeacherProgress = "progress.teacher"
)

// envOverrides maps flag names to their environment variable overrides.
var envOverrides = map[string]string{
	FeatureReportsAllowDuplicates: "REPORTS_ALLOW_DUPLICATES",
	FeatureReportsClass:           "REPORTS_CLASS_ENABLED",
	FeatureTermOverview:           "OVERVIEW_TERM_ENABLED",
	FeatureTeacherProgress:        "PROGRESS_TEACHER_ENABLED",
}

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureReportsAllowDuplicates] = &Feature{
		Name:        FeatureReportsAllowDuplicates,
		Description: "Allow repeated report generation for the same subject/term",
		Enabled:     true,
	}

	ff.features[FeatureReportsClass] = &Feature{
		Name:        FeatureReportsClass,
		Description: "Roster-wide class reports",
		Enabled:     true,
	}

	ff.features[FeatureTermOverview] = &Feature{
		Name:        FeatureTermOverview,
		Description: "Term-wide statistics overview",
		Enabled:     true,
	}

	ff.features[FeatureTeacherProgress] = &Feature{
		Name:        FeatureTeacherProgress,
		Description: "Teacher curriculum coverage tracking",
		Enabled:     true,
	}
}

// loadFromEnvironment applies per-flag environment overrides.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, envKey := range envOverrides {
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}
		enabled, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			continue
		}
		if f, ok := ff.features[name]; ok {
			f.Enabled = enabled
		}
	}
}

// IsEnabled reports whether a flag is on. Unknown flags are off.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled
}

// Set overrides a flag at runtime. Used by tests.
func (ff *FeatureFlags) Set(name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if f, ok := ff.features[name]; ok {
		f.Enabled = enabled
		return
	}
	ff.features[name] = &Feature{Name: name, Enabled: enabled}
}

// All returns a snapshot of every flag, for diagnostics.
func (ff *FeatureFlags) All() map[string]bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make(map[string]bool, len(ff.features))
	for name, f := range ff.features {
		out[name] = f.Enabled
	}
	return out
}
