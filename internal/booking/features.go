package booking

import "fmt"

// StayFeature selects the stay-length icon shown next to a price. It is
// display metadata only; durations outside the fixed set map to
// FeatureNone rather than an error.
type StayFeature string

const (
	FeatureNone StayFeature = ""
	Feature1H   StayFeature = "1h"
	Feature3H   StayFeature = "3h"
	Feature6H   StayFeature = "6h"
	Feature12H  StayFeature = "12h"
)

var durationFeatures = map[int]StayFeature{
	1:  Feature1H,
	3:  Feature3H,
	6:  Feature6H,
	12: Feature12H,
}

func MatchStayFeature(durationHours int) StayFeature {
	if f, ok := durationFeatures[durationHours]; ok {
		return f
	}
	return FeatureNone
}

var bedTypes = map[int]string{
	1: "Single Bed",
	2: "Queen Bed",
}

// PredictBedType maps a raw occupancy count to a canonical bed-type label.
// The catalog API does not carry bed types, so the label is derived the
// same way for every outlet.
func PredictBedType(maxPax int) string {
	if bt, ok := bedTypes[maxPax]; ok {
		return bt
	}
	return "Single Bed"
}

func CapacityLabel(maxPax int) string {
	return fmt.Sprintf("%d Adult", maxPax)
}
