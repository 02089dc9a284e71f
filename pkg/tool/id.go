package tool

import "github.com/google/uuid"

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateTraceID is used when the caller did not send X-Request-ID.
func GenerateTraceID() string {
	return uuid.New().String()
}
