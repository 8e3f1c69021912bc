package services

import (
	"reflect"
	"testing"
	"time"
)

var ref = time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

func entry(date string, mut func(*EncounterLog)) *EncounterLog {
	lg := &EncounterLog{
		ID:                shortID(12),
		Date:              date,
		PartnerSTIStatus:  PartnerSTIStatus{Status: STIClean},
		ProtectionFailure: AnswerNo,
		FluidsExchanged:   FluidsExchanged{Ejaculation: AnswerNo, BarrierExchange: AnswerNo},
	}
	if mut != nil {
		mut(lg)
	}
	return lg
}

func TestDetermineRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskBaseline},
		{1, RiskLow},
		{9, RiskLow},
		{10, RiskModerate},
		{29, RiskModerate},
		{30, RiskHigh},
		{49, RiskHigh},
		{50, RiskVeryHigh},
		{500, RiskVeryHigh},
	}
	for _, c := range cases {
		if got := DetermineRiskLevel(c.score); got != c.want {
			t.Fatalf("DetermineRiskLevel(%d)=%s, want %s", c.score, got, c.want)
		}
	}
}

func TestDetermineRiskLevelMonotonic(t *testing.T) {
	severity := map[RiskLevel]int{
		RiskBaseline: 0, RiskLow: 1, RiskModerate: 2, RiskHigh: 3, RiskVeryHigh: 4,
	}
	prev := severity[DetermineRiskLevel(0)]
	for s := 1; s <= 80; s++ {
		cur := severity[DetermineRiskLevel(s)]
		if cur < prev {
			t.Fatalf("severity decreased at score %d", s)
		}
		prev = cur
	}
}

func TestFilterRecentWindow(t *testing.T) {
	logs := []*EncounterLog{
		entry("2025-02-15", nil), // exactly on the cutoff: in
		entry("2025-02-14", nil), // one day before the cutoff: out
		entry("2025-05-20", nil), // future-dated: in, no upper bound
		entry("2024-12-01", nil), // out
	}
	recent, err := FilterRecent(logs, ref, 3)
	if err != nil {
		t.Fatalf("FilterRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d entries, want 2", len(recent))
	}
	if recent[0].Date != "2025-02-15" || recent[1].Date != "2025-05-20" {
		t.Fatalf("unexpected entries: %s, %s", recent[0].Date, recent[1].Date)
	}
}

func TestFilterRecentEmpty(t *testing.T) {
	recent, err := FilterRecent(nil, ref, 3)
	if err != nil {
		t.Fatalf("FilterRecent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("got %d entries, want 0", len(recent))
	}
}

func TestFilterRecentBadDate(t *testing.T) {
	_, err := FilterRecent([]*EncounterLog{entry("05/15/2025", nil)}, ref, 3)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorDateParse {
		t.Fatalf("expected date_parse error, got %v", err)
	}
}

func TestComputeRiskScoreEmptyWindow(t *testing.T) {
	score, err := ComputeRiskScore([]*EncounterLog{entry("2024-01-01", nil)}, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 0 {
		t.Fatalf("score=%d, want 0 for stale-only logs", score)
	}
}

func TestComputeRiskScoreUnprotectedVaginal(t *testing.T) {
	// One entry today, anonymous partner, unprotected vaginal receiving.
	logs := []*EncounterLog{entry("2025-05-15", func(lg *EncounterLog) {
		lg.SexTypes.VaginalSexReceiving = true
	})}
	score, err := ComputeRiskScore(logs, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 15 {
		t.Fatalf("score=%d, want 15 (5 partner + 10 unprotected vaginal)", score)
	}
	if DetermineRiskLevel(score) != RiskModerate {
		t.Fatalf("level=%s, want Moderate", DetermineRiskLevel(score))
	}
}

func TestComputeRiskScorePositivePartner(t *testing.T) {
	logs := []*EncounterLog{entry("2025-05-15", func(lg *EncounterLog) {
		lg.SexTypes.VaginalSexReceiving = true
		lg.PartnerSTIStatus.Status = STIPositive
	})}
	score, err := ComputeRiskScore(logs, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 45 {
		t.Fatalf("score=%d, want 45", score)
	}
	if DetermineRiskLevel(score) != RiskHigh {
		t.Fatalf("level=%s, want High", DetermineRiskLevel(score))
	}
}

func TestComputeRiskScoreMultiplePartnersOnly(t *testing.T) {
	logs := []*EncounterLog{
		entry("2025-05-01", func(lg *EncounterLog) {
			lg.PartnerName = "Alex"
			lg.SexTypes.Kissing = true
		}),
		entry("2025-05-08", func(lg *EncounterLog) {
			lg.PartnerName = "Sam"
			lg.SexTypes.Kissing = true
		}),
	}
	score, err := ComputeRiskScore(logs, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 10 {
		t.Fatalf("score=%d, want 10 (2 partners x 5)", score)
	}

	factors, err := IdentifyRiskFactors(logs, ref)
	if err != nil {
		t.Fatalf("IdentifyRiskFactors: %v", err)
	}
	want := []string{"2 different partners in the last 3 months"}
	if !reflect.DeepEqual(factors, want) {
		t.Fatalf("factors=%v, want %v", factors, want)
	}
}

func TestComputeRiskScoreAdditiveUnprotectedBonus(t *testing.T) {
	// "none" plus unprotected anal plus ejaculation collects the flat
	// bonus and the per-activity bonus for the same entry.
	logs := []*EncounterLog{entry("2025-05-10", func(lg *EncounterLog) {
		lg.ProtectionUsed.None = true
		lg.SexTypes.AnalSexReceiving = true
		lg.FluidsExchanged.Ejaculation = AnswerYes
	})}
	score, err := ComputeRiskScore(logs, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 45 {
		t.Fatalf("score=%d, want 45 (5 + 15 + 15 + 10)", score)
	}
}

func TestComputeRiskScoreCondomDiscounts(t *testing.T) {
	logs := []*EncounterLog{entry("2025-05-10", func(lg *EncounterLog) {
		lg.ProtectionUsed.Condom = true
		lg.SexTypes.VaginalSexGiving = true
		lg.SexTypes.AnalSexGiving = true
	})}
	score, err := ComputeRiskScore(logs, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 13 {
		t.Fatalf("score=%d, want 13 (5 + 3 + 5)", score)
	}
}

func TestAnonymousPartnersShareOneBucket(t *testing.T) {
	logs := []*EncounterLog{
		entry("2025-05-01", nil),
		entry("2025-05-02", nil),
		entry("2025-05-03", func(lg *EncounterLog) { lg.PartnerName = "Alex" }),
	}
	score, err := ComputeRiskScore(logs, ref)
	if err != nil {
		t.Fatalf("ComputeRiskScore: %v", err)
	}
	if score != 10 {
		t.Fatalf("score=%d, want 10 (2 buckets x 5)", score)
	}
}

func TestIdentifyRiskFactorsEmptyWindow(t *testing.T) {
	factors, err := IdentifyRiskFactors(nil, ref)
	if err != nil {
		t.Fatalf("IdentifyRiskFactors: %v", err)
	}
	if !reflect.DeepEqual(factors, []string{"No recent activity recorded"}) {
		t.Fatalf("factors=%v", factors)
	}
}

func TestIdentifyRiskFactorsOrderingAndPlurals(t *testing.T) {
	logs := []*EncounterLog{
		entry("2025-05-01", func(lg *EncounterLog) {
			lg.PartnerName = "Alex"
			lg.ProtectionUsed.None = true
			lg.SexTypes.AnalSexGiving = true
		}),
		entry("2025-05-05", func(lg *EncounterLog) {
			lg.PartnerName = "Sam"
			lg.PartnerSTIStatus.Status = STIPositive
		}),
		entry("2025-05-09", func(lg *EncounterLog) {
			lg.PartnerName = "Sam"
			lg.PartnerSTIStatus.Status = STIPositive
		}),
	}
	factors, err := IdentifyRiskFactors(logs, ref)
	if err != nil {
		t.Fatalf("IdentifyRiskFactors: %v", err)
	}
	want := []string{
		"2 different partners in the last 3 months",
		"1 unprotected encounter",
		"1 high-risk encounter",
		"2 encounters with partner(s) with known positive status",
	}
	if !reflect.DeepEqual(factors, want) {
		t.Fatalf("factors=%v, want %v", factors, want)
	}
}

func TestIdentifyRiskFactorsFallback(t *testing.T) {
	logs := []*EncounterLog{entry("2025-05-01", func(lg *EncounterLog) {
		lg.PartnerName = "Alex"
		lg.ProtectionUsed.Condom = true
		lg.SexTypes.Kissing = true
	})}
	factors, err := IdentifyRiskFactors(logs, ref)
	if err != nil {
		t.Fatalf("IdentifyRiskFactors: %v", err)
	}
	if !reflect.DeepEqual(factors, []string{"Consistent use of protection"}) {
		t.Fatalf("factors=%v", factors)
	}
}

func TestCalculateNextTestDateIntervals(t *testing.T) {
	last := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		level RiskLevel
		want  time.Time
	}{
		{RiskVeryHigh, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{RiskHigh, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{RiskModerate, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{RiskLow, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		{RiskBaseline, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		{RiskLevel("bogus"), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)}, // defensive default
	}
	for _, c := range cases {
		got, err := CalculateNextTestDate(nil, c.level, ref, &last)
		if err != nil {
			t.Fatalf("CalculateNextTestDate(%s): %v", c.level, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("CalculateNextTestDate(%s)=%s, want %s", c.level, got, c.want)
		}
	}
}

func TestCalculateNextTestDateOverdueOverride(t *testing.T) {
	// Last test five months back, Moderate interval of three
	// months lands in the past, so the recommendation collapses to one
	// week out.
	last := ref.AddDate(0, -5, 0)
	got, err := CalculateNextTestDate(nil, RiskModerate, ref, &last)
	if err != nil {
		t.Fatalf("CalculateNextTestDate: %v", err)
	}
	want := ref.AddDate(0, 0, 7)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCalculateNextTestDateFallsBackToLatestEncounter(t *testing.T) {
	logs := []*EncounterLog{
		entry("2025-04-02", nil),
		entry("2025-05-10", nil),
		entry("2025-03-20", nil),
	}
	got, err := CalculateNextTestDate(logs, RiskHigh, ref, nil)
	if err != nil {
		t.Fatalf("CalculateNextTestDate: %v", err)
	}
	want := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAssessEmptyLogs(t *testing.T) {
	// No logs, no last test.
	a, err := Assess(nil, ref, nil)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if a.Score != 0 || a.Level != RiskBaseline {
		t.Fatalf("got score=%d level=%s, want 0/Baseline", a.Score, a.Level)
	}
	if !reflect.DeepEqual(a.Factors, []string{"No recent activity recorded"}) {
		t.Fatalf("factors=%v", a.Factors)
	}
	if !a.NextTestDate.Equal(ref) {
		t.Fatalf("next test=%s, want reference date", a.NextTestDate)
	}
}

func TestAssessIdempotent(t *testing.T) {
	logs := []*EncounterLog{
		entry("2025-05-01", func(lg *EncounterLog) {
			lg.PartnerName = "Alex"
			lg.SexTypes.VaginalSexReceiving = true
		}),
		entry("2025-04-20", func(lg *EncounterLog) {
			lg.ProtectionUsed.None = true
			lg.SexTypes.AnalSexGiving = true
		}),
	}
	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	a1, err := Assess(logs, ref, &last)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	a2, err := Assess(logs, ref, &last)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if !reflect.DeepEqual(a1, a2) {
		t.Fatalf("assessments differ: %+v vs %+v", a1, a2)
	}
}

func TestAssessDoesNotMutateInput(t *testing.T) {
	lg := entry("2025-05-01", func(lg *EncounterLog) {
		lg.PartnerName = "Alex"
		lg.SexTypes.VaginalSexReceiving = true
	})
	snapshot := *lg
	if _, err := Assess([]*EncounterLog{lg}, ref, nil); err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if !reflect.DeepEqual(snapshot, *lg) {
		t.Fatalf("input entry mutated: %+v", *lg)
	}
}

func TestAssessPropagatesDateParseError(t *testing.T) {
	_, err := Assess([]*EncounterLog{entry("not-a-date", nil)}, ref, nil)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorDateParse {
		t.Fatalf("expected date_parse error, got %v", err)
	}
}

func TestAssessScoreNonNegative(t *testing.T) {
	collections := [][]*EncounterLog{
		nil,
		{entry("2025-05-01", nil)},
		{entry("2024-01-01", nil)},
		{entry("2025-05-01", func(lg *EncounterLog) { lg.ProtectionUsed.Condom = true })},
	}
	for i, logs := range collections {
		a, err := Assess(logs, ref, nil)
		if err != nil {
			t.Fatalf("Assess #%d: %v", i, err)
		}
		if a.Score < 0 {
			t.Fatalf("Assess #%d: negative score %d", i, a.Score)
		}
	}
}
