package catalog

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Status represents the lifecycle of a video record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusUploaded   Status = "uploaded"
	StatusError      Status = "error"
)

// maxErrorLength bounds the persisted error detail so oversized HTTP bodies
// and stack traces cannot bloat the catalog.
const maxErrorLength = 500

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusUploaded,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Record represents one video awaiting or having completed publication.
type Record struct {
	ID                 int64
	Title              string
	NormalizedTitle    string
	Description        string
	Tags               string
	Category           string
	Privacy            string
	SourceLink         string
	Status             Status
	Attempts           int
	LastError          string
	ErrorAt            *time.Time
	PublishedURL       string
	PublishedID        string
	UploadDurationSecs float64
	SizeBytes          int64
	ClaimedAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Event is one entry in a record's audit trail.
type Event struct {
	ID        int64
	RecordID  int64
	Note      string
	CreatedAt time.Time
}

// HealthSummary describes aggregated record counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Uploaded   int
	Error      int
}

// DatabaseHealth captures diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalRecords     int
	Error            string
}

var titleFolder = cases.Fold()

// NormalizeTitle produces the case-insensitive, trimmed dedup key for a title.
func NormalizeTitle(title string) string {
	return titleFolder.String(strings.TrimSpace(title))
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing reports whether the record reflects an in-flight run.
func (r Record) IsProcessing() bool {
	return r.Status == StatusProcessing
}

// SetFailed marks the record as failed with the given error detail.
// Attempts are incremented only here, on the transition into Error.
func (r *Record) SetFailed(message string) {
	now := time.Now().UTC()
	r.Status = StatusError
	r.LastError = truncateError(message)
	r.ErrorAt = &now
	r.Attempts++
	r.ClaimedAt = nil
}

// SetUploaded marks the record as published and clears prior error detail.
func (r *Record) SetUploaded(publishedID, publishedURL string, duration time.Duration) {
	r.Status = StatusUploaded
	r.PublishedID = publishedID
	r.PublishedURL = publishedURL
	r.UploadDurationSecs = duration.Seconds()
	r.LastError = ""
	r.ErrorAt = nil
	r.ClaimedAt = nil
}

func truncateError(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown error"
	}
	if len(message) > maxErrorLength {
		return message[:maxErrorLength]
	}
	return message
}
