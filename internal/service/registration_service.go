package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"eventsignup/internal/directory"
	"eventsignup/internal/fees"
	"eventsignup/internal/identity"
	"eventsignup/internal/metrics"
	"eventsignup/internal/models"
	"eventsignup/internal/security"
	"eventsignup/internal/validation"
)

var (
	// ErrEventNotFound indicates the event does not exist or has no fee tiers
	ErrEventNotFound = errors.New("event not found")
	// ErrPrimaryContactRequired indicates the roster did not name exactly one primary contact
	ErrPrimaryContactRequired = errors.New("exactly one primary contact is required")
	// ErrNotAuthorized indicates a missing session or a bad identifier signature
	ErrNotAuthorized = errors.New("not authorized")
	// ErrIdentifierScope indicates the roster references records outside the signed set
	ErrIdentifierScope = errors.New("record outside authorized scope")
	// ErrNoPeople indicates an empty roster
	ErrNoPeople = errors.New("no people to register")
)

// Directory is the slice of the people directory the registration flow uses
type Directory interface {
	GetPerson(ctx context.Context, id string) (*directory.Record[directory.PersonAttributes], error)
	FindHouseholds(ctx context.Context, personID string) ([]directory.Record[directory.HouseholdAttributes], error)
	GetHousehold(ctx context.Context, id string, includePeople bool) (*directory.Single[directory.HouseholdAttributes], error)
	GetEmailsForPerson(ctx context.Context, personID string) ([]directory.Record[directory.EmailAttributes], error)
	GetPhonesForPerson(ctx context.Context, personID string) ([]directory.Record[directory.PhoneAttributes], error)
	GetAddressesForPerson(ctx context.Context, personID string) ([]directory.Record[directory.AddressAttributes], error)
	CreatePerson(ctx context.Context, attrs directory.PersonAttributes) (string, error)
	UpdatePerson(ctx context.Context, id string, attrs directory.PersonAttributes) error
	AddOrUpdateEmail(ctx context.Context, personID, recordID string, attrs directory.EmailAttributes) (string, error)
	AddOrUpdatePhone(ctx context.Context, personID, recordID string, attrs directory.PhoneAttributes) (string, error)
	AddOrUpdateAddress(ctx context.Context, personID, recordID string, attrs directory.AddressAttributes) (string, error)
	CreateHousehold(ctx context.Context, name, primaryContactID string, memberIDs []string) (string, error)
	UpdateHousehold(ctx context.Context, id, name, primaryContactID string) error
	AddToHousehold(ctx context.Context, householdID, personID string) error
}

// eventStore reads event definitions
type eventStore interface {
	GetEventByID(eventID string) (*models.Event, error)
}

// registrationStore records completed registrations
type registrationStore interface {
	Exists(eventID, personID string) (bool, error)
	Create(reg *models.EventRegistration) error
}

// HouseholdDisclosure is everything the registration form needs about an
// authenticated person's household, plus the signed identifier set that
// scopes which directory records a later submission may touch.
type HouseholdDisclosure struct {
	HouseholdID      string          `json:"HouseholdID"`
	HouseholdName    string          `json:"HouseholdName"`
	PrimaryContactID string          `json:"PrimaryContactID"`
	People           []models.Person `json:"People"`
	Identifiers      []string        `json:"Identifiers"`
	Signature        string          `json:"Signature"`
}

// RegistrationInput is one submitted registration. An empty HouseholdID
// means a brand new household; otherwise Identifiers and Signature must
// come from a prior household disclosure.
type RegistrationInput struct {
	EventID       string          `json:"EventID"`
	HouseholdID   string          `json:"HouseholdID"`
	HouseholdName string          `json:"HouseholdName"`
	People        []models.Person `json:"People"`
	Identifiers   []string        `json:"Identifiers"`
	Signature     string          `json:"Signature"`
}

// RegistrationService orchestrates household disclosure and registration
// submission against the people directory.
type RegistrationService struct {
	directory     Directory
	events        eventStore
	registrations registrationStore
	signer        *identity.Signer
	email         *EmailService
	metrics       *metrics.Metrics
	operatorEmail string
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(dir Directory, events eventStore, registrations registrationStore, signer *identity.Signer, email *EmailService, m *metrics.Metrics, operatorEmail string) *RegistrationService {
	return &RegistrationService{
		directory:     dir,
		events:        events,
		registrations: registrations,
		signer:        signer,
		email:         email,
		metrics:       m,
		operatorEmail: operatorEmail,
	}
}

// GetOrCreateHousehold resolves the household for a verified person,
// creating a single-member household when none exists, and returns the
// member roster with contact details and a signed identifier set.
func (s *RegistrationService) GetOrCreateHousehold(ctx context.Context, personID string) (*HouseholdDisclosure, error) {
	houses, err := s.directory.FindHouseholds(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}

	householdID := ""
	for i := range houses {
		if houses[i].Attributes.PrimaryContactID == personID {
			householdID = houses[i].ID
			break
		}
	}
	if householdID == "" && len(houses) > 0 {
		householdID = houses[0].ID
	}
	if householdID == "" {
		person, err := s.directory.GetPerson(ctx, personID)
		if err != nil {
			return nil, fmt.Errorf("failed to load person: %w", err)
		}
		householdID, err = s.directory.CreateHousehold(ctx, person.Attributes.LastName, personID, []string{personID})
		if err != nil {
			return nil, fmt.Errorf("failed to create household: %w", err)
		}
	}

	house, err := s.directory.GetHousehold(ctx, householdID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load household: %w", err)
	}
	members, err := directory.HouseholdPeople(house)
	if err != nil {
		return nil, err
	}

	people := make([]models.Person, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range members {
		people[i] = personFromRecord(&members[i])
		people[i].IsPrimaryContact = members[i].ID == house.Data.Attributes.PrimaryContactID

		// Contact records only matter for adults; children register
		// through their household's contacts.
		if people[i].Child {
			continue
		}
		p := &people[i]
		g.Go(func() error {
			return s.loadContacts(gctx, p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := identity.NewSet(householdID)
	for i := range people {
		set = set.Add(people[i].RecordIDs()...)
	}

	return &HouseholdDisclosure{
		HouseholdID:      householdID,
		HouseholdName:    house.Data.Attributes.Name,
		PrimaryContactID: house.Data.Attributes.PrimaryContactID,
		People:           people,
		Identifiers:      set.IDs(),
		Signature:        s.signer.Sign(set),
	}, nil
}

// loadContacts fills in one person's preferred email, phone, and address
func (s *RegistrationService) loadContacts(ctx context.Context, p *models.Person) error {
	emails, err := s.directory.GetEmailsForPerson(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load emails for %s: %w", p.ID, err)
	}
	if e := pickEmail(emails); e != nil {
		p.EmailAddress = e.Attributes.Address
		p.EmailID = e.ID
	}

	phones, err := s.directory.GetPhonesForPerson(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load phones for %s: %w", p.ID, err)
	}
	if ph := pickPhone(phones); ph != nil {
		p.PhoneNumber = ph.Attributes.Number
		p.PhoneID = ph.ID
	}

	addresses, err := s.directory.GetAddressesForPerson(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load addresses for %s: %w", p.ID, err)
	}
	if a := pickAddress(addresses); a != nil {
		p.Street = a.Attributes.Street
		p.City = a.Attributes.City
		p.State = a.Attributes.State
		p.Zip = a.Attributes.Zip
		p.AddressID = a.ID
	}
	return nil
}

// A sole record wins outright; among several we take the primary one.
// Phones differ: people rarely mark a primary, so a mobile number is the
// best reachable choice.
func pickEmail(records []directory.Record[directory.EmailAttributes]) *directory.Record[directory.EmailAttributes] {
	if len(records) == 1 {
		return &records[0]
	}
	for i := range records {
		if records[i].Attributes.Primary {
			return &records[i]
		}
	}
	return nil
}

func pickPhone(records []directory.Record[directory.PhoneAttributes]) *directory.Record[directory.PhoneAttributes] {
	if len(records) == 1 {
		return &records[0]
	}
	for i := range records {
		if strings.EqualFold(records[i].Attributes.Location, "Mobile") {
			return &records[i]
		}
	}
	return nil
}

func pickAddress(records []directory.Record[directory.AddressAttributes]) *directory.Record[directory.AddressAttributes] {
	if len(records) == 1 {
		return &records[0]
	}
	for i := range records {
		if records[i].Attributes.Primary {
			return &records[i]
		}
	}
	return nil
}

// CompleteRegistration validates and applies one submitted registration.
// All authorization and scope checks run before the first directory write.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, session *security.Session, input *RegistrationInput) error {
	event, err := s.events.GetEventByID(input.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		s.metrics.RegistrationsRejected.WithLabelValues("event_not_found").Inc()
		return ErrEventNotFound
	}

	if len(input.People) == 0 {
		s.metrics.RegistrationsRejected.WithLabelValues("validation").Inc()
		return ErrNoPeople
	}
	primaries := 0
	for i := range input.People {
		if err := validation.ValidatePerson(&input.People[i]); err != nil {
			s.metrics.RegistrationsRejected.WithLabelValues("validation").Inc()
			return err
		}
		if input.People[i].IsPrimaryContact {
			primaries++
		}
	}
	if primaries != 1 {
		s.metrics.RegistrationsRejected.WithLabelValues("primary_contact").Inc()
		return ErrPrimaryContactRequired
	}

	householdID := input.HouseholdID
	if householdID == "" {
		householdID, err = s.createHousehold(ctx, input)
	} else {
		err = s.updateHousehold(ctx, session, input)
	}
	if err != nil {
		return err
	}

	s.record(ctx, event, householdID, input)
	s.metrics.RegistrationsCompleted.Inc()
	return nil
}

// createHousehold handles a submission from someone with no directory
// presence: every person is created fresh, then grouped into a household.
func (s *RegistrationService) createHousehold(ctx context.Context, input *RegistrationInput) (string, error) {
	primaryID := ""
	memberIDs := make([]string, 0, len(input.People))
	for i := range input.People {
		p := &input.People[i]
		id, err := s.directory.CreatePerson(ctx, personAttributes(p))
		if err != nil {
			return "", fmt.Errorf("failed to create person %s %s: %w", p.FirstName, p.LastName, err)
		}
		p.ID = id
		memberIDs = append(memberIDs, id)
		if p.IsPrimaryContact {
			primaryID = id
		}
		if !p.Child {
			if err := s.writeContacts(ctx, p); err != nil {
				return "", err
			}
		}
	}

	name := strings.TrimSpace(input.HouseholdName)
	if name == "" {
		for i := range input.People {
			if input.People[i].IsPrimaryContact {
				name = input.People[i].LastName
			}
		}
	}

	householdID, err := s.directory.CreateHousehold(ctx, name, primaryID, memberIDs)
	if err != nil {
		return "", fmt.Errorf("failed to create household: %w", err)
	}
	return householdID, nil
}

// updateHousehold handles a submission against an existing household. The
// caller must hold a session and a valid signature over the identifier set,
// and every existing record in the roster must fall inside that set.
func (s *RegistrationService) updateHousehold(ctx context.Context, session *security.Session, input *RegistrationInput) error {
	if session == nil {
		s.metrics.RegistrationsRejected.WithLabelValues("unauthorized").Inc()
		return ErrNotAuthorized
	}

	set := identity.NewSet(input.Identifiers...)
	if !s.signer.Verify(set, input.Signature) {
		s.metrics.RegistrationsRejected.WithLabelValues("bad_signature").Inc()
		return ErrNotAuthorized
	}

	if !set.Contains(input.HouseholdID) {
		s.metrics.RegistrationsRejected.WithLabelValues("scope").Inc()
		return ErrIdentifierScope
	}
	for i := range input.People {
		if !set.ContainsAll(input.People[i].RecordIDs()) {
			s.metrics.RegistrationsRejected.WithLabelValues("scope").Inc()
			return ErrIdentifierScope
		}
	}

	primaryID := ""
	for i := range input.People {
		p := &input.People[i]
		if p.IsNew() {
			id, err := s.directory.CreatePerson(ctx, personAttributes(p))
			if err != nil {
				return fmt.Errorf("failed to create person %s %s: %w", p.FirstName, p.LastName, err)
			}
			p.ID = id
			if err := s.directory.AddToHousehold(ctx, input.HouseholdID, id); err != nil {
				return fmt.Errorf("failed to add %s to household: %w", id, err)
			}
		} else {
			if err := s.directory.UpdatePerson(ctx, p.ID, personAttributes(p)); err != nil {
				return fmt.Errorf("failed to update person %s: %w", p.ID, err)
			}
		}
		if !p.Child {
			if err := s.writeContacts(ctx, p); err != nil {
				return err
			}
		}
		if p.IsPrimaryContact {
			primaryID = p.ID
		}
	}

	name := strings.TrimSpace(input.HouseholdName)
	if name != "" || primaryID != "" {
		if err := s.directory.UpdateHousehold(ctx, input.HouseholdID, name, primaryID); err != nil {
			return fmt.Errorf("failed to update household: %w", err)
		}
	}
	return nil
}

// writeContacts creates or updates a person's contact records, writing the
// assigned record ids back onto the roster entry.
func (s *RegistrationService) writeContacts(ctx context.Context, p *models.Person) error {
	if p.EmailAddress != "" {
		id, err := s.directory.AddOrUpdateEmail(ctx, p.ID, p.EmailID, directory.EmailAttributes{
			Address: p.EmailAddress,
			Primary: true,
		})
		if err != nil {
			return fmt.Errorf("failed to save email for %s: %w", p.ID, err)
		}
		p.EmailID = id
	}
	if p.PhoneNumber != "" {
		id, err := s.directory.AddOrUpdatePhone(ctx, p.ID, p.PhoneID, directory.PhoneAttributes{
			Number:   p.PhoneNumber,
			Location: "Mobile",
		})
		if err != nil {
			return fmt.Errorf("failed to save phone for %s: %w", p.ID, err)
		}
		p.PhoneID = id
	}
	if p.Street != "" {
		id, err := s.directory.AddOrUpdateAddress(ctx, p.ID, p.AddressID, directory.AddressAttributes{
			Street:  p.Street,
			City:    p.City,
			State:   p.State,
			Zip:     p.Zip,
			Primary: true,
		})
		if err != nil {
			return fmt.Errorf("failed to save address for %s: %w", p.ID, err)
		}
		p.AddressID = id
	}
	return nil
}

// record writes the audit rows and notifies the operator. The registration
// itself already succeeded, so failures here are logged rather than
// returned to the submitter.
func (s *RegistrationService) record(ctx context.Context, event *models.Event, householdID string, input *RegistrationInput) {
	candidates := make([]models.RegistrationCandidate, 0, len(input.People))
	for i := range input.People {
		p := input.People[i]
		candidate := models.RegistrationCandidate{Person: p, Selected: p.Selected}
		if p.Selected {
			if fee, ok := fees.Match(event.Fees, p); ok {
				candidate.MatchedFee = fee
			}
		}
		candidates = append(candidates, candidate)

		exists, err := s.registrations.Exists(event.ID, p.ID)
		if err != nil {
			log.Printf("Failed to check existing registration for %s: %v", p.ID, err)
			continue
		}
		if exists {
			continue
		}
		reg := &models.EventRegistration{
			ID:            uuid.NewString(),
			EventID:       event.ID,
			PersonID:      p.ID,
			HouseholdID:   householdID,
			HouseholdName: input.HouseholdName,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			Gender:        p.Gender,
			BirthDate:     p.BirthDate,
			Child:         p.Child,
			Grade:         p.Grade,
			MedicalNotes:  p.MedicalNotes,
			Group:         candidate.GroupName(),
		}
		if err := s.registrations.Create(reg); err != nil {
			log.Printf("Failed to record registration for %s: %v", p.ID, err)
		}
	}

	if s.operatorEmail != "" {
		if err := s.email.SendRegistrationSummary(ctx, s.operatorEmail, event, candidates); err != nil {
			log.Printf("Failed to send registration summary: %v", err)
		}
	}
}

// personFromRecord converts a directory record into a roster entry
func personFromRecord(rec *directory.Record[directory.PersonAttributes]) models.Person {
	p := models.Person{
		ID:           rec.ID,
		FirstName:    rec.Attributes.FirstName,
		LastName:     rec.Attributes.LastName,
		Gender:       rec.Attributes.Gender,
		Child:        rec.Attributes.Child,
		Grade:        rec.Attributes.Grade,
		MedicalNotes: rec.Attributes.MedicalNotes,
	}
	if rec.Attributes.Birthdate != nil {
		t := rec.Attributes.Birthdate.Time
		p.BirthDate = &t
	}
	return p
}

// personAttributes converts a roster entry into directory person attributes
func personAttributes(p *models.Person) directory.PersonAttributes {
	attrs := directory.PersonAttributes{
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Gender:       p.Gender,
		Child:        p.Child,
		Grade:        p.Grade,
		MedicalNotes: p.MedicalNotes,
	}
	if p.BirthDate != nil {
		d := directory.NewDate(*p.BirthDate)
		attrs.Birthdate = &d
	}
	return attrs
}
