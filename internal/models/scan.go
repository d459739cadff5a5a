package models

import "time"

// ScannedPoint is a locally captured, not-yet-confirmed scan. Location is
// nil when the device had no fix; such a scan can never be submitted and is
// reported as a terminal failure instead of being queued.
type ScannedPoint struct {
	ID         string
	Code       string
	Source     CodeSource
	Location   *Location
	CapturedAt time.Time
}

// ScanStatus is the outcome reported to the caller of HandleScannedPoint.
type ScanStatus int

const (
	// StatusUnknown is the zero value, reported only alongside an error.
	StatusUnknown ScanStatus = iota
	// StatusSent means the server accepted the scan immediately.
	StatusSent
	// StatusQueued means the scan was persisted for later replay.
	StatusQueued
)

func (s ScanStatus) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusQueued:
		return "queued"
	}
	return "unknown"
}
