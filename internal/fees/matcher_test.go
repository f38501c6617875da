package fees

import (
	"testing"
	"time"

	"eventsignup/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func TestMatchReturnsFirstMatchingTier(t *testing.T) {
	tiers := []models.EventFee{
		{ID: "child-fee", Child: true, Gender: models.GenderAny},
		{ID: "adult-fee", Child: false, Gender: models.GenderAny},
	}

	fee, ok := Match(tiers, models.Person{Child: true})
	if !ok {
		t.Fatal("expected a match")
	}
	if fee.ID != "child-fee" {
		t.Errorf("expected child-fee, got %s", fee.ID)
	}

	fee, ok = Match(tiers, models.Person{Child: false})
	if !ok {
		t.Fatal("expected a match")
	}
	if fee.ID != "adult-fee" {
		t.Errorf("expected adult-fee, got %s", fee.ID)
	}
}

func TestMatchDeclarationOrderWins(t *testing.T) {
	// Both tiers match; the first declared one must win.
	tiers := []models.EventFee{
		{ID: "early", Gender: models.GenderAny},
		{ID: "late", Gender: models.GenderAny},
	}

	fee, ok := Match(tiers, models.Person{})
	if !ok {
		t.Fatal("expected a match")
	}
	if fee.ID != "early" {
		t.Errorf("expected early, got %s", fee.ID)
	}
}

func TestMatchGender(t *testing.T) {
	tests := []struct {
		name       string
		tierGender string
		person     string
		want       bool
	}{
		{"wildcard matches male", models.GenderAny, models.GenderMale, true},
		{"wildcard matches female", models.GenderAny, models.GenderFemale, true},
		{"male tier matches male", models.GenderMale, models.GenderMale, true},
		{"male tier rejects female", models.GenderMale, models.GenderFemale, false},
		{"female tier rejects male", models.GenderFemale, models.GenderMale, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiers := []models.EventFee{{ID: "fee", Gender: tt.tierGender}}
			_, ok := Match(tiers, models.Person{Gender: tt.person})
			if ok != tt.want {
				t.Errorf("match = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestMatchGradeFilter(t *testing.T) {
	tiers := []models.EventFee{
		{ID: "elementary", Gender: models.GenderAny, ApplyGradeFilter: true, MinGrade: 1, MaxGrade: 5},
	}

	tests := []struct {
		name  string
		grade *int
		want  bool
	}{
		{"below range", intPtr(0), false},
		{"lower bound", intPtr(1), true},
		{"inside range", intPtr(3), true},
		{"upper bound", intPtr(5), true},
		{"above range", intPtr(6), false},
		{"unknown grade never matches", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Match(tiers, models.Person{Grade: tt.grade})
			if ok != tt.want {
				t.Errorf("match = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestMatchAgeFilterWithCutoff(t *testing.T) {
	// Age is computed at the tier's cutoff date, not today.
	cutoff := date(2025, time.June, 1)
	tiers := []models.EventFee{
		{ID: "youth", Gender: models.GenderAny, ApplyAgeFilter: true, MinAge: 10, MaxAge: 12, AgeCutoff: timePtr(cutoff)},
	}

	tests := []struct {
		name  string
		birth *time.Time
		want  bool
	}{
		{"turns 10 before cutoff", timePtr(date(2015, time.March, 1)), true},
		{"turns 10 after cutoff", timePtr(date(2015, time.September, 1)), false},
		{"exactly 12 at cutoff", timePtr(date(2013, time.June, 1)), true},
		{"already 13", timePtr(date(2012, time.May, 1)), false},
		{"unknown birthdate never matches", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := MatchAt(tiers, models.Person{BirthDate: tt.birth}, date(2025, time.January, 15))
			if ok != tt.want {
				t.Errorf("match = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestMatchAgeFilterDefaultsToNow(t *testing.T) {
	now := date(2025, time.February, 1)
	tiers := []models.EventFee{
		{ID: "nine-year-olds", Gender: models.GenderAny, ApplyAgeFilter: true, MinAge: 9, MaxAge: 9},
	}

	// Born 2015-03-01: still 9 on 2025-02-01, already 10 on 2025-03-01.
	person := models.Person{BirthDate: timePtr(date(2015, time.March, 1))}

	if _, ok := MatchAt(tiers, person, now); !ok {
		t.Error("expected a match before the birthday")
	}
	if _, ok := MatchAt(tiers, person, date(2025, time.March, 1)); ok {
		t.Error("expected no match on the birthday")
	}
}

func TestMatchNoTierMatches(t *testing.T) {
	tiers := []models.EventFee{
		{ID: "girls-only", Gender: models.GenderFemale},
	}

	if _, ok := Match(tiers, models.Person{Gender: models.GenderMale}); ok {
		t.Error("expected no match")
	}
	if _, ok := Match(nil, models.Person{}); ok {
		t.Error("expected no match against empty tier list")
	}
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		ref   time.Time
		want  int
	}{
		{"day before birthday", date(2015, time.March, 1), date(2025, time.February, 28), 9},
		{"on birthday", date(2015, time.March, 1), date(2025, time.March, 1), 10},
		{"day after birthday", date(2015, time.March, 1), date(2025, time.March, 2), 10},
		{"same day as birth", date(2015, time.March, 1), date(2015, time.March, 1), 0},
		{"leap day birth in common year", date(2012, time.February, 29), date(2025, time.February, 28), 12},
		{"leap day birth on march first", date(2012, time.February, 29), date(2025, time.March, 1), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeAt(tt.birth, tt.ref); got != tt.want {
				t.Errorf("AgeAt() = %d, want %d", got, tt.want)
			}
		})
	}
}
