package storage

import "time"

// Ingestion is one row of the ingestion ledger: the latest processing
// outcome for a source filename. Re-ingesting a file replaces its row.
type Ingestion struct {
	Filename    string
	PointID     string
	Outcome     string
	Detail      string
	ProcessedAt time.Time
}
