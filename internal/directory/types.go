package directory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date marshals as the bare YYYY-MM-DD form the directory uses for birthdates
type Date struct {
	time.Time
}

// NewDate builds a Date from a time value, dropping the time-of-day part
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("directory: invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// PersonAttributes mirrors the directory's person resource
type PersonAttributes struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Gender       string `json:"gender,omitempty"`
	Birthdate    *Date  `json:"birthdate,omitempty"`
	Child        bool   `json:"child"`
	Grade        *int   `json:"grade,omitempty"`
	MedicalNotes string `json:"medical_notes,omitempty"`
}

// HouseholdAttributes mirrors the directory's household resource
type HouseholdAttributes struct {
	Name             string `json:"name"`
	MemberCount      int    `json:"member_count,omitempty"`
	PrimaryContactID string `json:"primary_contact_id,omitempty"`
}

// EmailAttributes mirrors the directory's email resource
type EmailAttributes struct {
	Address  string `json:"address"`
	Location string `json:"location,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
}

// PhoneAttributes mirrors the directory's phone number resource
type PhoneAttributes struct {
	Number   string `json:"number"`
	Location string `json:"location,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
}

// AddressAttributes mirrors the directory's street address resource
type AddressAttributes struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Location string `json:"location,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
}

// Record is one resource in the directory's envelope format
type Record[T any] struct {
	Type          string                  `json:"type,omitempty"`
	ID            string                  `json:"id,omitempty"`
	Attributes    T                       `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Relationship links a record to related resources
type Relationship struct {
	Data []RelationshipData `json:"data"`
}

// RelationshipData is one type/id reference inside a relationship
type RelationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Single is a one-record response envelope
type Single[T any] struct {
	Data     Record[T]        `json:"data"`
	Included []IncludedRecord `json:"included,omitempty"`
}

// List is a multi-record response envelope
type List[T any] struct {
	Data []Record[T] `json:"data"`
}

// IncludedRecord is a side-loaded resource whose concrete type depends on
// its Type field
type IncludedRecord struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

// Related decodes the side-loaded records of the given resource type
func Related[T any](included []IncludedRecord, resourceType string) ([]Record[T], error) {
	var out []Record[T]
	for _, inc := range included {
		if !strings.EqualFold(inc.Type, resourceType) {
			continue
		}
		var attrs T
		if err := json.Unmarshal(inc.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("directory: decode included %s %s: %w", inc.Type, inc.ID, err)
		}
		out = append(out, Record[T]{Type: inc.Type, ID: inc.ID, Attributes: attrs})
	}
	return out, nil
}
