package repository

import (
	"database/sql"
	"fmt"

	"eventsignup/internal/database"
	"eventsignup/internal/models"
)

// EventRepository handles database operations for events and their fee tiers
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetUpcomingEvents retrieves events that have not yet ended, soonest first
func (r *EventRepository) GetUpcomingEvents() ([]models.Event, error) {
	query := `
		SELECT id, name, description, long_description, payment_instructions,
		       confirmation_message, logo_url, support_info, begin_at, end_at
		FROM events
		WHERE end_at >= CURRENT_TIMESTAMP
		ORDER BY begin_at ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}

// GetEventByID retrieves an event with its fee tiers, or nil when unknown
func (r *EventRepository) GetEventByID(eventID string) (*models.Event, error) {
	query := `
		SELECT id, name, description, long_description, payment_instructions,
		       confirmation_message, logo_url, support_info, begin_at, end_at
		FROM events
		WHERE id = ?
	`
	row := r.db.QueryRow(query, eventID)

	event, err := scanEventRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	fees, err := r.getFees(eventID)
	if err != nil {
		return nil, err
	}
	event.Fees = fees

	return event, nil
}

// getFees retrieves an event's fee tiers in declaration order
func (r *EventRepository) getFees(eventID string) ([]models.EventFee, error) {
	query := `
		SELECT id, event_id, fee_order, child, gender,
		       apply_grade_filter, min_grade, max_grade,
		       apply_age_filter, min_age, max_age, age_cutoff,
		       group_name, cost, description
		FROM event_fees
		WHERE event_id = ?
		ORDER BY fee_order ASC
	`
	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event fees: %w", err)
	}
	defer rows.Close()

	var fees []models.EventFee
	for rows.Next() {
		var fee models.EventFee
		var ageCutoff sql.NullTime
		if err := rows.Scan(
			&fee.ID, &fee.EventID, &fee.Order, &fee.Child, &fee.Gender,
			&fee.ApplyGradeFilter, &fee.MinGrade, &fee.MaxGrade,
			&fee.ApplyAgeFilter, &fee.MinAge, &fee.MaxAge, &ageCutoff,
			&fee.Group, &fee.Cost, &fee.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event fee: %w", err)
		}
		if ageCutoff.Valid {
			cutoff := ageCutoff.Time
			fee.AgeCutoff = &cutoff
		}
		fees = append(fees, fee)
	}

	return fees, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (*models.Event, error) {
	event, err := scanEventRow(s)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return event, nil
}

func scanEventRow(s scanner) (*models.Event, error) {
	var event models.Event
	err := s.Scan(
		&event.ID, &event.Name, &event.Description, &event.LongDescription,
		&event.PaymentInstructions, &event.ConfirmationMessage, &event.LogoURL,
		&event.SupportInfo, &event.BeginDateTime, &event.EndDateTime,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
