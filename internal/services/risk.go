package services

import (
	"fmt"
	"time"
)

// RiskLevel is the five-point classification derived from the numeric score.
type RiskLevel string

const (
	RiskBaseline RiskLevel = "Baseline"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// Scoring policy. All weights live here so the convention can change in
// one place. The flat unprotected bonus and the per-activity bonuses are
// additive for the same entry: an entry flagged "none" with unprotected
// vaginal or anal activity collects both. That matches the shipped
// behavior and is kept as deliberate policy.
const (
	riskWindowMonths = 3

	pointsPerPartner      = 5
	pointsUnprotected     = 15
	pointsVaginalNoCondom = 10
	pointsVaginalCondom   = 3
	pointsAnalNoCondom    = 15
	pointsAnalCondom      = 5
	pointsEjaculation     = 10
	pointsBarrierExchange = 10
	pointsPositivePartner = 30
)

// Level thresholds, exclusive upper bound on the named value: a score of
// exactly 10 is Moderate, 30 is High, 50 is Very High.
const (
	thresholdLow      = 10
	thresholdModerate = 30
	thresholdHigh     = 50
)

// anonymousPartner is the shared bucket for entries with no partner name.
// Scoring and factor text both count through this bucket so the two can
// never disagree on the partner count.
const anonymousPartner = "Unknown"

// emptyLogLevel is the level reported for an empty log collection. The
// legacy UI defaulted its state to Low before any computation ran; this
// derives DetermineRiskLevel(0) instead for internal consistency.
const emptyLogLevel = RiskBaseline

// noActivityFactor is the sentinel factor for an empty risk window.
const noActivityFactor = "No recent activity recorded"

// protectedFactor is the fallback when no risk factor fired.
const protectedFactor = "Consistent use of protection"

// testIntervalMonths maps a risk level to the recommended months between
// tests. Unknown levels fall back to defaultTestIntervalMonths.
var testIntervalMonths = map[RiskLevel]int{
	RiskVeryHigh: 1,
	RiskHigh:     2,
	RiskModerate: 3,
	RiskLow:      6,
	RiskBaseline: 6,
}

const defaultTestIntervalMonths = 3

// testOverrideDays is the "test ASAP" horizon applied when the computed
// next test date has already passed.
const testOverrideDays = 7

// RiskAssessment is the derived view over a user's encounter logs. It is
// recomputed on demand and never persisted.
type RiskAssessment struct {
	Score        int       `json:"score"`
	Level        RiskLevel `json:"level"`
	Factors      []string  `json:"factors"`
	NextTestDate time.Time `json:"next_test_date"`
}

// ParseLogDate interprets an encounter's stored date (YYYY-MM-DD) as a
// UTC calendar date.
func ParseLogDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, NewDateParseError(fmt.Sprintf("invalid log date %q", s))
	}
	return t, nil
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FilterRecent returns the entries dated on or after referenceDate minus
// windowMonths calendar months. Future-dated entries pass: there is no
// upper bound, so an assessment stays deterministic for any reference
// date. The input slice is never mutated.
func FilterRecent(logs []*EncounterLog, referenceDate time.Time, windowMonths int) ([]*EncounterLog, error) {
	cutoff := DateOnly(referenceDate).AddDate(0, -windowMonths, 0)
	out := make([]*EncounterLog, 0, len(logs))
	for _, lg := range logs {
		d, err := ParseLogDate(lg.Date)
		if err != nil {
			return nil, err
		}
		if !d.Before(cutoff) {
			out = append(out, lg)
		}
	}
	return out, nil
}

func partnerBucket(name string) string {
	if name == "" {
		return anonymousPartner
	}
	return name
}

func countPartners(logs []*EncounterLog) int {
	seen := map[string]struct{}{}
	for _, lg := range logs {
		seen[partnerBucket(lg.PartnerName)] = struct{}{}
	}
	return len(seen)
}

func isUnprotected(lg *EncounterLog) bool {
	return lg.ProtectionUsed.None || lg.ProtectionFailure == AnswerYes
}

func hasVaginal(lg *EncounterLog) bool {
	return lg.SexTypes.VaginalSexGiving || lg.SexTypes.VaginalSexReceiving
}

func hasAnal(lg *EncounterLog) bool {
	return lg.SexTypes.AnalSexGiving || lg.SexTypes.AnalSexReceiving
}

// ComputeRiskScore derives the numeric score over the trailing risk
// window. An empty window scores 0: no recent activity is neither
// penalized nor rewarded.
func ComputeRiskScore(logs []*EncounterLog, referenceDate time.Time) (int, error) {
	recent, err := FilterRecent(logs, referenceDate, riskWindowMonths)
	if err != nil {
		return 0, err
	}
	if len(recent) == 0 {
		return 0, nil
	}

	score := countPartners(recent) * pointsPerPartner

	for _, lg := range recent {
		if isUnprotected(lg) {
			score += pointsUnprotected
		}
		if hasVaginal(lg) {
			if lg.ProtectionUsed.Condom {
				score += pointsVaginalCondom
			} else {
				score += pointsVaginalNoCondom
			}
		}
		if hasAnal(lg) {
			if lg.ProtectionUsed.Condom {
				score += pointsAnalCondom
			} else {
				score += pointsAnalNoCondom
			}
		}
		if lg.FluidsExchanged.Ejaculation == AnswerYes {
			score += pointsEjaculation
		}
		if lg.FluidsExchanged.BarrierExchange == AnswerYes {
			score += pointsBarrierExchange
		}
		if lg.PartnerSTIStatus.Status == STIPositive {
			score += pointsPositivePartner
		}
	}
	return score, nil
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// IdentifyRiskFactors explains the score's largest contributors over the
// same window as ComputeRiskScore. The result is never empty: an empty
// window yields the no-activity sentinel, and a window with no firing
// condition yields the consistent-protection fallback.
func IdentifyRiskFactors(logs []*EncounterLog, referenceDate time.Time) ([]string, error) {
	recent, err := FilterRecent(logs, referenceDate, riskWindowMonths)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return []string{noActivityFactor}, nil
	}

	var factors []string

	if n := countPartners(recent); n > 1 {
		factors = append(factors, fmt.Sprintf("%d different partners in the last %d months", n, riskWindowMonths))
	}

	unprotected := 0
	highRisk := 0
	positive := 0
	for _, lg := range recent {
		if isUnprotected(lg) {
			unprotected++
		}
		if hasAnal(lg) && !lg.ProtectionUsed.Condom {
			highRisk++
		}
		if lg.PartnerSTIStatus.Status == STIPositive {
			positive++
		}
	}
	if unprotected > 0 {
		factors = append(factors, fmt.Sprintf("%d unprotected encounter%s", unprotected, plural(unprotected)))
	}
	if highRisk > 0 {
		factors = append(factors, fmt.Sprintf("%d high-risk encounter%s", highRisk, plural(highRisk)))
	}
	if positive > 0 {
		factors = append(factors, fmt.Sprintf("%d encounter%s with partner(s) with known positive status", positive, plural(positive)))
	}

	if len(factors) == 0 {
		factors = append(factors, protectedFactor)
	}
	return factors, nil
}

// DetermineRiskLevel maps a score to its level. First match wins.
func DetermineRiskLevel(score int) RiskLevel {
	switch {
	case score == 0:
		return RiskBaseline
	case score < thresholdLow:
		return RiskLow
	case score < thresholdModerate:
		return RiskModerate
	case score < thresholdHigh:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// mostRecentLogDate returns the latest entry date, or zero when logs is empty.
func mostRecentLogDate(logs []*EncounterLog) (time.Time, error) {
	var latest time.Time
	for _, lg := range logs {
		d, err := ParseLogDate(lg.Date)
		if err != nil {
			return time.Time{}, err
		}
		if d.After(latest) {
			latest = d
		}
	}
	return latest, nil
}

// CalculateNextTestDate recommends the next STI test date. The base date
// is the last recorded test, falling back to the most recent logged
// encounter, falling back to the reference date; the risk level sets the
// interval. A computed date already in the past collapses to reference
// date plus one week: test ASAP. The override runs after month addition,
// never before.
func CalculateNextTestDate(logs []*EncounterLog, level RiskLevel, referenceDate time.Time, lastTested *time.Time) (time.Time, error) {
	today := DateOnly(referenceDate)

	base := today
	if lastTested != nil {
		base = DateOnly(*lastTested)
	} else if len(logs) > 0 {
		latest, err := mostRecentLogDate(logs)
		if err != nil {
			return time.Time{}, err
		}
		base = latest
	}

	months, ok := testIntervalMonths[level]
	if !ok {
		months = defaultTestIntervalMonths
	}

	candidate := base.AddDate(0, months, 0)
	if candidate.Before(today) {
		return today.AddDate(0, 0, testOverrideDays), nil
	}
	return candidate, nil
}

// Assess composes the full risk computation: score, level, factors, next
// test date. Pure and deterministic given inputs and referenceDate; safe
// to call concurrently as long as callers do not mutate logs mid-call.
func Assess(logs []*EncounterLog, referenceDate time.Time, lastTested *time.Time) (*RiskAssessment, error) {
	if len(logs) == 0 {
		return &RiskAssessment{
			Score:        0,
			Level:        emptyLogLevel,
			Factors:      []string{noActivityFactor},
			NextTestDate: DateOnly(referenceDate),
		}, nil
	}

	score, err := ComputeRiskScore(logs, referenceDate)
	if err != nil {
		return nil, err
	}
	factors, err := IdentifyRiskFactors(logs, referenceDate)
	if err != nil {
		return nil, err
	}
	level := DetermineRiskLevel(score)
	next, err := CalculateNextTestDate(logs, level, referenceDate, lastTested)
	if err != nil {
		return nil, err
	}
	return &RiskAssessment{Score: score, Level: level, Factors: factors, NextTestDate: next}, nil
}
