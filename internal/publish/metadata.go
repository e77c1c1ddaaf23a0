package publish

import "strings"

// Platform limits for video metadata.
const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
	maxTagsTotalLength   = 500
)

// Metadata carries the fields sent with an upload.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// categoryIDs is the single canonical mapping from human-readable category
// names to platform category codes.
var categoryIDs = map[string]string{
	"film & animation":      "1",
	"music":                 "10",
	"sports":                "17",
	"gaming":                "20",
	"people & blogs":        "22",
	"entertainment":         "24",
	"news & politics":       "25",
	"howto & style":         "26",
	"education":             "27",
	"science & technology":  "28",
	"nonprofits & activism": "29",
}

const defaultCategoryID = "27" // education

var privacyValues = map[string]struct{}{
	"public":   {},
	"unlisted": {},
	"private":  {},
}

// CategoryID resolves a category name to its platform code, falling back to
// the education category for unknown names.
func CategoryID(name string) string {
	if id, ok := categoryIDs[strings.ToLower(strings.TrimSpace(name))]; ok {
		return id
	}
	return defaultCategoryID
}

// NormalizePrivacy lowercases and validates a privacy value, defaulting to
// public for unknown input.
func NormalizePrivacy(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if _, ok := privacyValues[normalized]; ok {
		return normalized
	}
	return "public"
}

// Clamp enforces the platform's metadata limits in place.
func (m *Metadata) Clamp() {
	m.Title = clampString(strings.TrimSpace(m.Title), maxTitleLength)
	m.Description = clampString(m.Description, maxDescriptionLength)
	m.Privacy = NormalizePrivacy(m.Privacy)

	var kept []string
	total := 0
	for _, tag := range m.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if total+len(tag) > maxTagsTotalLength {
			break
		}
		total += len(tag)
		kept = append(kept, tag)
	}
	m.Tags = kept
}

func clampString(value string, limit int) string {
	if len(value) > limit {
		return value[:limit]
	}
	return value
}

// SplitTags converts the catalog's comma-separated tag field into a slice.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
