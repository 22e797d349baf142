package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStayFeature(t *testing.T) {
	cases := map[int]StayFeature{
		1:  Feature1H,
		3:  Feature3H,
		6:  Feature6H,
		12: Feature12H,
		2:  FeatureNone,
		24: FeatureNone,
		0:  FeatureNone,
	}

	for hours, want := range cases {
		assert.Equal(t, want, MatchStayFeature(hours), "duration %dh", hours)
	}
}

func TestPredictBedType(t *testing.T) {
	assert.Equal(t, "Single Bed", PredictBedType(1))
	assert.Equal(t, "Queen Bed", PredictBedType(2))
	assert.Equal(t, "Single Bed", PredictBedType(4))
}

func TestCapacityLabel(t *testing.T) {
	assert.Equal(t, "2 Adult", CapacityLabel(2))
}
