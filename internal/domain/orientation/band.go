// Package orientation classifies numeric averages into qualitative
// performance bands. It is the single source of truth for the band
// thresholds: every component that needs a band calls Classify, nothing
// re-derives the thresholds locally.
package orientation

// Band is an ordered performance category derived from a 0-20 average.
type Band int

// Bands, ordered from best to worst.
const (
	Excellent Band = iota
	TresBien
	Bien
	Passable
	Insuffisant
)

// Band thresholds (inclusive lower bounds), evaluated top-down.
// An average exactly on a boundary belongs to the higher band.
const (
	thresholdExcellent = 16.0
	thresholdTresBien  = 14.0
	thresholdBien      = 12.0
	thresholdPassable  = 10.0
)

// Classify maps a numeric average to its orientation band.
// It is pure and total: every float yields a band.
func Classify(average float64) Band {
	switch {
	case average >= thresholdExcellent:
		return Excellent
	case average >= thresholdTresBien:
		return TresBien
	case average >= thresholdBien:
		return Bien
	case average >= thresholdPassable:
		return Passable
	default:
		return Insuffisant
	}
}

// String returns the display label used on bulletins and statistics.
func (b Band) String() string {
	switch b {
	case Excellent:
		return "Excellent"
	case TresBien:
		return "Très bien"
	case Bien:
		return "Bien"
	case Passable:
		return "Passable"
	case Insuffisant:
		return "Insuffisant"
	default:
		return "Insuffisant"
	}
}

// All returns the bands in order, best first. Used for distribution
// reporting so that empty bands still appear with a zero count.
func All() []Band {
	return []Band{Excellent, TresBien, Bien, Passable, Insuffisant}
}
