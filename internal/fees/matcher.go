// Package fees assigns registrants to fee tiers.
package fees

import (
	"time"

	"eventsignup/internal/models"
)

// Match evaluates fee tiers in their declared order and returns the first
// tier the person satisfies. The second result is false when the person
// matches no tier; that is a normal "ineligible" outcome, not an error.
//
// Tiers are not required to be mutually exclusive or exhaustive. A tier with
// neither filter active matches any person with the right child/gender
// combination, so catch-all tiers belong at the end of the list.
func Match(tiers []models.EventFee, person models.Person) (*models.EventFee, bool) {
	return MatchAt(tiers, person, time.Now())
}

// MatchAt is Match with an explicit reference time, used when a tier has no
// fixed age cutoff date.
func MatchAt(tiers []models.EventFee, person models.Person, now time.Time) (*models.EventFee, bool) {
	for i := range tiers {
		if matches(&tiers[i], person, now) {
			return &tiers[i], true
		}
	}
	return nil, false
}

func matches(tier *models.EventFee, person models.Person, now time.Time) bool {
	if tier.Child != person.Child {
		return false
	}

	if tier.Gender != models.GenderAny && tier.Gender != person.Gender {
		return false
	}

	if tier.ApplyGradeFilter {
		if person.Grade == nil {
			return false
		}
		if *person.Grade < tier.MinGrade || *person.Grade > tier.MaxGrade {
			return false
		}
	}

	if tier.ApplyAgeFilter {
		if person.BirthDate == nil {
			return false
		}
		cutoff := now
		if tier.AgeCutoff != nil {
			cutoff = *tier.AgeCutoff
		}
		age := AgeAt(*person.BirthDate, cutoff)
		if age < tier.MinAge || age > tier.MaxAge {
			return false
		}
	}

	return true
}

// AgeAt returns whole elapsed years between birth and ref: the age does not
// increment until the birthday anniversary has occurred relative to ref.
func AgeAt(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() ||
		(ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return years
}
