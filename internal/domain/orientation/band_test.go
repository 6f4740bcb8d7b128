package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		average float64
		want    Band
	}{
		{"top of scale", 20.0, Excellent},
		{"exactly excellent", 16.0, Excellent},
		{"just under excellent", 15.99, TresBien},
		{"exactly tres bien", 14.0, TresBien},
		{"just under tres bien", 13.99, Bien},
		{"exactly bien", 12.0, Bien},
		{"just under bien", 11.99, Passable},
		{"exactly passable", 10.0, Passable},
		{"just under passable", 9.99, Insuffisant},
		{"zero", 0.0, Insuffisant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.average))
		})
	}
}

func TestBand_String(t *testing.T) {
	assert.Equal(t, "Excellent", Excellent.String())
	assert.Equal(t, "Très bien", TresBien.String())
	assert.Equal(t, "Bien", Bien.String())
	assert.Equal(t, "Passable", Passable.String())
	assert.Equal(t, "Insuffisant", Insuffisant.String())
}

func TestAll_OrderedBestFirst(t *testing.T) {
	bands := All()
	assert.Len(t, bands, 5)
	assert.Equal(t, Excellent, bands[0])
	assert.Equal(t, Insuffisant, bands[4])
}
