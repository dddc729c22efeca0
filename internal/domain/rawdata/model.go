package rawdata

import "time"

// Snapshot archives one structured page reading for replay and debugging.
type Snapshot struct {
	EventID     string
	Promotion   string
	PayloadJSON string
	ScrapedAt   time.Time
}
