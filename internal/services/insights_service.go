package services

import (
	"fmt"
	"time"
)

type InsightsStore interface {
	ListEncounters(userID string) ([]*EncounterLog, error)
	GetProfile(userID string) (*Profile, error)
}

// InsightsService computes the home dashboard view: risk assessment,
// past-week activity and the countdown to the next recommended test.
// Everything is recomputed from a snapshot of the log collection on each
// call; nothing here caches derived state.
type InsightsService struct {
	store InsightsStore
	now   func() time.Time
}

func NewInsightsService(store InsightsStore) *InsightsService {
	return &InsightsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// weeklyWindowDays is the trailing window for the "recent activity" card.
const weeklyWindowDays = 7

const metricTestingDue = "Testing due"

type InsightsSummary struct {
	Risk           *RiskAssessment `json:"risk"`
	RecentLogs     []*EncounterLog `json:"recent_logs"`
	RecentSummary  string          `json:"recent_summary"`
	DaysToNextTest int             `json:"days_to_next_test"`
	MetricType     string          `json:"metric_type"`
}

// Summary assembles the dashboard for one user.
func (s *InsightsService) Summary(userID string) (*InsightsSummary, error) {
	if userID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	logs, err := s.store.ListEncounters(userID)
	if err != nil {
		return nil, err
	}

	var lastTested *time.Time
	if p, err := s.store.GetProfile(userID); err != nil {
		return nil, err
	} else if p != nil && p.LastTestedDate != "" {
		d, err := ParseLogDate(p.LastTestedDate)
		if err != nil {
			return nil, err
		}
		lastTested = &d
	}

	today := DateOnly(s.now())
	assessment, err := Assess(logs, today, lastTested)
	if err != nil {
		return nil, err
	}

	recent, err := filterPastWeek(logs, today)
	if err != nil {
		return nil, err
	}

	days := int(assessment.NextTestDate.Sub(today).Hours() / 24)

	return &InsightsSummary{
		Risk:           assessment,
		RecentLogs:     recent,
		RecentSummary:  recentSummary(len(recent)),
		DaysToNextTest: days,
		MetricType:     metricTestingDue,
	}, nil
}

// filterPastWeek keeps entries dated within the trailing week, inclusive
// on both ends. Unlike the risk window this one is bounded above by
// today: the card reports what happened, so future-dated entries stay
// off it.
func filterPastWeek(logs []*EncounterLog, today time.Time) ([]*EncounterLog, error) {
	lower := today.AddDate(0, 0, -weeklyWindowDays)
	out := make([]*EncounterLog, 0, len(logs))
	for _, lg := range logs {
		d, err := ParseLogDate(lg.Date)
		if err != nil {
			return nil, err
		}
		if !d.Before(lower) && !d.After(today) {
			out = append(out, lg)
		}
	}
	return out, nil
}

func recentSummary(n int) string {
	if n == 0 {
		return "No encounters in the past week"
	}
	return fmt.Sprintf("%d encounter%s in the past week", n, plural(n))
}
