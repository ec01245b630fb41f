package ingest

import "time"

const defaultStaleAfter = time.Minute

// Config holds ingestor settings.
type Config struct {
	Group      string        // Feed-group being observed, for logging
	StaleAfter time.Duration // Items older than this when announced are not scheduled
}
