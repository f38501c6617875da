package repository

import (
	"database/sql"
	"fmt"

	"eventsignup/internal/database"
	"eventsignup/internal/models"
)

// RegistrationRepository handles the event registration audit rows
type RegistrationRepository struct {
	db *database.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Exists reports whether a person is already logged for an event
func (r *RegistrationRepository) Exists(eventID, personID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM event_people WHERE event_id = ? AND person_id = ?"
	err := r.db.QueryRow(query, eventID, personID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return count > 0, nil
}

// Create writes one registration audit row
func (r *RegistrationRepository) Create(reg *models.EventRegistration) error {
	query := `
		INSERT INTO event_people (
			id, event_id, person_id, household_id, household_name,
			first_name, last_name, gender, birth_date, child, grade,
			medical_notes, group_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var birthDate interface{}
	if reg.BirthDate != nil {
		birthDate = *reg.BirthDate
	}
	var grade interface{}
	if reg.Grade != nil {
		grade = *reg.Grade
	}

	_, err := r.db.Exec(query,
		reg.ID, reg.EventID, reg.PersonID, reg.HouseholdID, reg.HouseholdName,
		reg.FirstName, reg.LastName, reg.Gender, birthDate, reg.Child, grade,
		reg.MedicalNotes, reg.Group,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// ListByEvent retrieves the audit rows for an event, oldest first
func (r *RegistrationRepository) ListByEvent(eventID string) ([]models.EventRegistration, error) {
	query := `
		SELECT id, event_id, person_id, household_id, household_name,
		       first_name, last_name, gender, birth_date, child, grade,
		       medical_notes, group_name, created_at
		FROM event_people
		WHERE event_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var regs []models.EventRegistration
	for rows.Next() {
		var reg models.EventRegistration
		var birthDate sql.NullTime
		var grade sql.NullInt64
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.PersonID, &reg.HouseholdID, &reg.HouseholdName,
			&reg.FirstName, &reg.LastName, &reg.Gender, &birthDate, &reg.Child, &grade,
			&reg.MedicalNotes, &reg.Group, &reg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		if birthDate.Valid {
			bd := birthDate.Time
			reg.BirthDate = &bd
		}
		if grade.Valid {
			g := int(grade.Int64)
			reg.Grade = &g
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}
