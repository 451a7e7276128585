package mapping

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gzhole/toolscout/internal/artifact"
)

// ScanReport summarizes what a scan read and what it had to skip. ScanID and
// the timing fields change on every run and are left out of JSON so that
// exports of an unchanged store stay byte-identical.
type ScanReport struct {
	ScanID         string             `json:"-"`
	Input          string             `json:"input"`
	CatalogVersion string             `json:"catalog_version"`
	FilesSeen      int                `json:"files_seen"`
	Processed      int                `json:"processed"`
	Skipped        []artifact.Skipped `json:"skipped"`
	Warnings       []string           `json:"warnings"`
	StartedAt      time.Time          `json:"-"`
	Duration       time.Duration      `json:"-"`
}

// NewScanReport starts a report for input with a fresh scan ID.
func NewScanReport(input, catalogVersion string) *ScanReport {
	return &ScanReport{
		ScanID:         uuid.New().String(),
		Input:          input,
		CatalogVersion: catalogVersion,
		Skipped:        []artifact.Skipped{},
		Warnings:       []string{},
		StartedAt:      time.Now(),
	}
}

func (r *ScanReport) finish() {
	r.Duration = time.Since(r.StartedAt)
}

// Since backdates the report to the moment the scan began, before the store
// was loaded.
func (r *ScanReport) Since(start time.Time) {
	r.StartedAt = start
	r.finish()
}

// Summary returns a one-line description such as
// "processed 250 of 284 artifacts, 34 skipped".
func (r *ScanReport) Summary() string {
	return fmt.Sprintf("processed %d of %d artifacts, %d skipped", r.Processed, r.FilesSeen, len(r.Skipped))
}
