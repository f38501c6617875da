package models

import "time"

// Gender values as stored in the directory. Fee rules may additionally use
// GenderAny to match either.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderAny    = "*"
)

// Person is the registration-time projection of a directory person record.
// ID and the contact record IDs are empty until the directory assigns them.
type Person struct {
	ID        string     `json:"ID"`
	FirstName string     `json:"FirstName"`
	LastName  string     `json:"LastName"`
	Gender    string     `json:"Gender"`
	BirthDate *time.Time `json:"BirthDate"`
	Child     bool       `json:"Child"`

	// Grade is -1 (Pre-K) through 6; nil means not yet in school / unknown.
	Grade *int `json:"Grade"`

	MedicalNotes string `json:"MedicalNotes"`

	EmailAddress string `json:"EmailAddress"`
	EmailID      string `json:"EmailID"`
	PhoneNumber  string `json:"PhoneNumber"`
	PhoneID      string `json:"PhoneID"`

	Street    string `json:"Street"`
	City      string `json:"City"`
	State     string `json:"State"`
	Zip       string `json:"Zip"`
	AddressID string `json:"AddressID"`

	IsPrimaryContact bool `json:"IsPrimaryContact"`

	// Selected marks a person being registered for the current event,
	// as opposed to a household member who is merely being updated.
	Selected bool `json:"Selected"`
}

// RecordIDs returns every directory record id this person references.
// Used to check an update roster against a signed identifier set.
func (p *Person) RecordIDs() []string {
	var ids []string
	for _, id := range []string{p.ID, p.EmailID, p.PhoneID, p.AddressID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsNew reports whether the person has not yet been created in the directory
func (p *Person) IsNew() bool {
	return p.ID == ""
}
