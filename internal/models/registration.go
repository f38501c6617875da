package models

import "time"

// GroupNone is recorded when a person matched no fee tier or was not
// selected for the event.
const GroupNone = "N/A"

// EventRegistration is the denormalized audit row written once per
// (event, person) when a registration completes.
type EventRegistration struct {
	ID            string
	EventID       string
	PersonID      string
	HouseholdID   string
	HouseholdName string

	FirstName    string
	LastName     string
	Gender       string
	BirthDate    *time.Time
	Child        bool
	Grade        *int
	MedicalNotes string

	Group     string
	CreatedAt time.Time
}

// RegistrationCandidate pairs a person with their fee-match outcome for the
// current event rather than bolting match state onto the person record.
type RegistrationCandidate struct {
	Person     Person
	MatchedFee *EventFee
	Selected   bool
}

// GroupName returns the group to record for this candidate
func (c *RegistrationCandidate) GroupName() string {
	if !c.Selected || c.MatchedFee == nil {
		return GroupNone
	}
	return c.MatchedFee.Group
}
