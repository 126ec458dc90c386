package store

import "time"

// Dates are persisted as ISO text (dateAchat, Notification.date). New rows
// are written in RFC 3339; stores written by older application versions may
// carry space-separated or date-only values, so reads try those shapes too.
var storedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseStoredTime(s string) time.Time {
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
