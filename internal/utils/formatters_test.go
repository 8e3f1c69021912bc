package utils

import (
	"testing"
	"time"
)

func TestFormatSex(t *testing.T) {
	cases := map[string]string{
		"":                  "Not specified",
		"male":              "Male",
		"non-binary":        "Non-binary",
		"prefer-not-to-say": "Prefer not to say",
		"custom":            "custom",
	}
	for in, want := range cases {
		if got := FormatSex(in); got != want {
			t.Fatalf("FormatSex(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestFormatOrientation(t *testing.T) {
	if got := FormatOrientation("pansexual"); got != "Pansexual" {
		t.Fatalf("got %q", got)
	}
	if got := FormatOrientation(""); got != "Not specified" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "May 15, 2025" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
}

func TestFormatTestResult(t *testing.T) {
	if got := FormatTestResult("Clean"); got != "Negative" {
		t.Fatalf("got %q", got)
	}
	if got := FormatTestResult(""); got != "No result recorded" {
		t.Fatalf("got %q", got)
	}
}
