// Package scan defines the domain model for repository vulnerability scans:
// the scan request, the typed event stream a session produces, and the
// session summary.
package scan

import "fmt"

// EventType identifies the kind of a scan event.
type EventType string

const (
	EventTypeStatus        EventType = "status"
	EventTypeProgress      EventType = "progress"
	EventTypeInfo          EventType = "info"
	EventTypeVulnerability EventType = "vulnerability"
	EventTypeError         EventType = "error"
	EventTypeCriticalError EventType = "critical_error"
	EventTypeDone          EventType = "done"
)

// Event is a single entry in a scan session's ordered event stream.
// Payload is a plain string for every event type except vulnerability,
// which carries a Finding.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// Finding is the payload of a vulnerability event.
type Finding struct {
	File     string `json:"file"`
	Analysis string `json:"analysis"`
}

// Summary captures the aggregate outcome of a session.
type Summary struct {
	FilesScanned         int
	VulnerabilitiesFound bool
}

// Event constructors. The payload strings are part of the wire contract
// consumed by existing clients; do not reword them.

// Cloning announces that acquisition of the repository is starting.
// display must be a redacted form of the target when a credential is in play.
func Cloning(display string) Event {
	return Event{Type: EventTypeStatus, Payload: fmt.Sprintf("Cloning repository from %s...", display)}
}

// Cloned confirms the repository was materialized into the workspace.
func Cloned() Event {
	return Event{Type: EventTypeStatus, Payload: "Repository cloned successfully."}
}

// Scanning announces that a candidate file is about to be analyzed.
func Scanning(relPath string) Event {
	return Event{Type: EventTypeProgress, Payload: fmt.Sprintf("Scanning file: %s", relPath)}
}

// SkippedEmpty reports that a candidate file had no analyzable content.
func SkippedEmpty(relPath string) Event {
	return Event{Type: EventTypeInfo, Payload: fmt.Sprintf("Skipping empty file: %s", relPath)}
}

// Clean reports that the analysis found nothing in a file.
func Clean(relPath string) Event {
	return Event{Type: EventTypeInfo, Payload: fmt.Sprintf("No vulnerabilities found in: %s", relPath)}
}

// Vulnerable reports an analysis finding for a file.
func Vulnerable(relPath, analysis string) Event {
	return Event{Type: EventTypeVulnerability, Payload: Finding{File: relPath, Analysis: analysis}}
}

// FileError reports a recovered per-file failure; the session continues.
func FileError(relPath string, err error) Event {
	return Event{Type: EventTypeError, Payload: fmt.Sprintf("Error processing file %s: %v", relPath, err)}
}

// Critical reports a session-fatal failure. The session proceeds directly
// to cleanup after emitting it.
func Critical(err error) Event {
	return Event{Type: EventTypeCriticalError, Payload: fmt.Sprintf("An unexpected error occurred during scanning: %v", err)}
}

// SummaryEvent renders the single end-of-traversal status line. Precedence:
// no candidates, then no findings, then findings present.
func SummaryEvent(s Summary) Event {
	switch {
	case s.FilesScanned == 0:
		return Event{Type: EventTypeStatus, Payload: "No supported files found to scan in the repository."}
	case !s.VulnerabilitiesFound:
		return Event{Type: EventTypeStatus, Payload: "Scan complete. No vulnerabilities found in supported files."}
	default:
		return Event{Type: EventTypeStatus, Payload: "Scan complete. Vulnerabilities were found."}
	}
}

// CleanedUp confirms the ephemeral workspace was removed.
func CleanedUp() Event {
	return Event{Type: EventTypeStatus, Payload: "Cleaned up temporary files."}
}

// Done is the terminal event of every session, emitted exactly once.
func Done() Event {
	return Event{Type: EventTypeDone, Payload: "Process finished."}
}
