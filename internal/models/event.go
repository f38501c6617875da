package models

import "time"

// Event is a scheduled event people register for
type Event struct {
	ID                  string     `json:"EventID"`
	Name                string     `json:"Name"`
	Description         string     `json:"Description"`
	LongDescription     string     `json:"LongDescription"`
	PaymentInstructions string     `json:"PaymentInstructions"`
	ConfirmationMessage string     `json:"ConfirmationMessage"`
	LogoURL             string     `json:"LogoUrl"`
	SupportInfo         string     `json:"SupportInfo"`
	BeginDateTime       time.Time  `json:"BeginDateTime"`
	EndDateTime         time.Time  `json:"EndDateTime"`
	Fees                []EventFee `json:"Fees"`
}

// EventFee is one configured fee tier for an event. Tiers are evaluated in
// Order; the first tier whose predicate matches a person wins.
type EventFee struct {
	ID      string `json:"FeeID"`
	EventID string `json:"EventID"`
	Order   int    `json:"Order"`

	Child  bool   `json:"Child"`
	Gender string `json:"Gender"` // M, F, or * for any

	ApplyGradeFilter bool `json:"ApplyGradeFilter"`
	MinGrade         int  `json:"MinGrade"`
	MaxGrade         int  `json:"MaxGrade"`

	ApplyAgeFilter bool       `json:"ApplyAgeFilter"`
	MinAge         int        `json:"MinAge"`
	MaxAge         int        `json:"MaxAge"`
	AgeCutoff      *time.Time `json:"AgeCutoff"`

	Group       string  `json:"Group"`
	Cost        float64 `json:"Cost"`
	Description string  `json:"Description"`
}
