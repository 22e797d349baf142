package redisx

import "fmt"

const ns = "bookflow:v1"

func KeySession(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", ns, sessionID)
}

func KeyCatalog(lotID, checkInEpoch int64, durationHours int) string {
	return fmt.Sprintf("%s:catalog:%d:%d:%d", ns, lotID, checkInEpoch, durationHours)
}

func KeyLocations() string {
	return ns + ":locations"
}

func KeyLocation(locationID int64) string {
	return fmt.Sprintf("%s:location:%d", ns, locationID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelCheckoutStarted() string {
	return ns + ":checkout:started"
}
