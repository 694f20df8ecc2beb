package detector

import (
	"DroneDetect/internal/entity"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChain(t *testing.T) {
	in := []entity.Detection{
		{Label: "  Bird ", Confidence: 0.8, Box: entity.BoundingBox{X1: 1, Y1: 2, X2: 3, Y2: 4}},
		{Label: "Person", Confidence: 0.2},
		{Label: "KITE", Confidence: 0.3},
	}

	out := Chain(in, NewScoreFilter(0.3), NewLabelNormalizer(), NewBoxScaler(2))

	assert.Len(t, out, 2)
	assert.Equal(t, "bird", out[0].Label)
	assert.Equal(t, entity.BoundingBox{X1: 2, Y1: 4, X2: 6, Y2: 8}, out[0].Box)
	assert.Equal(t, "kite", out[1].Label)

	// input is left untouched
	assert.Equal(t, "  Bird ", in[0].Label)
	assert.Equal(t, 1.0, in[0].Box.X1)
}

func TestScoreFilterEmpty(t *testing.T) {
	assert.Empty(t, NewScoreFilter(0.5)(nil))
}
