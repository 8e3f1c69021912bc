package utils

import (
	"time"
)

// Display labels for the enum values stored on profiles. Unknown values
// pass through untouched so older clients keep working.

var sexLabels = map[string]string{
	"male":              "Male",
	"female":            "Female",
	"non-binary":        "Non-binary",
	"other":             "Other",
	"prefer-not-to-say": "Prefer not to say",
}

var orientationLabels = map[string]string{
	"straight":          "Straight",
	"gay":               "Gay",
	"lesbian":           "Lesbian",
	"bisexual":          "Bisexual",
	"pansexual":         "Pansexual",
	"asexual":           "Asexual",
	"other":             "Other",
	"prefer-not-to-say": "Prefer not to say",
}

func FormatSex(v string) string {
	if v == "" {
		return "Not specified"
	}
	if l, ok := sexLabels[v]; ok {
		return l
	}
	return v
}

func FormatOrientation(v string) string {
	if v == "" {
		return "Not specified"
	}
	if l, ok := orientationLabels[v]; ok {
		return l
	}
	return v
}

// FormatDate renders a date the way the client shows it, e.g. "May 15, 2025".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// FormatTestResult labels a stored test outcome for display.
func FormatTestResult(v string) string {
	switch v {
	case "":
		return "No result recorded"
	case "Clean":
		return "Negative"
	case "Positive":
		return "Positive"
	default:
		return v
	}
}
