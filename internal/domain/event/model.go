package event

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusUpcoming = "UPCOMING"
	StatusLive     = "LIVE"
	StatusComplete = "COMPLETE"
)

// Event is one fight card tracked by the service.
type Event struct {
	ID               string
	Name             string
	Promotion        string
	SourceURL        string
	Status           string
	CompletionSource string
	StartsAt         time.Time
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if e.Promotion == "" {
		return fmt.Errorf("event promotion is required")
	}

	return nil
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusUpcoming
	}
	return status
}

func IsComplete(status string) bool {
	return NormalizeStatus(status) == StatusComplete
}
