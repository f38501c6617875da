package repository

import (
	"os"
	"testing"
	"time"

	"eventsignup/internal/database"
	"eventsignup/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := t.Name() + ".db"
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func seedEvent(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO events (id, name, begin_at, end_at) VALUES (?, ?, ?, ?)",
		"event-1", "Summer Camp",
		time.Now().Add(24*time.Hour), time.Now().Add(72*time.Hour),
	)
	if err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	_, err = db.Exec(
		`INSERT INTO event_fees (id, event_id, fee_order, child, gender, group_name, cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?, ?)`,
		"fee-kids", "event-1", 1, true, "*", "Campers", 50.0,
		"fee-adults", "event-1", 2, false, "*", "Chaperones", 0.0,
	)
	if err != nil {
		t.Fatalf("Failed to seed fees: %v", err)
	}
}

func TestEventRepository(t *testing.T) {
	db := setupTestDB(t)
	seedEvent(t, db)
	repo := NewEventRepository(db)

	t.Run("GetUpcomingEvents", func(t *testing.T) {
		events, err := repo.GetUpcomingEvents()
		if err != nil {
			t.Fatalf("GetUpcomingEvents() error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].Name != "Summer Camp" {
			t.Errorf("Name = %q, want Summer Camp", events[0].Name)
		}
	})

	t.Run("GetEventByID loads fees in order", func(t *testing.T) {
		event, err := repo.GetEventByID("event-1")
		if err != nil {
			t.Fatalf("GetEventByID() error: %v", err)
		}
		if event == nil {
			t.Fatal("expected event")
		}
		if len(event.Fees) != 2 {
			t.Fatalf("expected 2 fees, got %d", len(event.Fees))
		}
		if event.Fees[0].ID != "fee-kids" || event.Fees[1].ID != "fee-adults" {
			t.Errorf("fee order = %s, %s", event.Fees[0].ID, event.Fees[1].ID)
		}
	})

	t.Run("GetEventByID unknown id", func(t *testing.T) {
		event, err := repo.GetEventByID("missing")
		if err != nil {
			t.Fatalf("GetEventByID() error: %v", err)
		}
		if event != nil {
			t.Errorf("expected nil, got %+v", event)
		}
	})
}

func TestTokenRepositoryConsume(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)

	create := func(t *testing.T, tokenID string) {
		t.Helper()
		err := repo.CreateToken(&models.LoginToken{
			TokenID:      tokenID,
			EmailAddress: "jane@example.com",
			PersonID:     "person-1",
			CodeHash:     "hash",
			ExpiresAt:    time.Now().Add(20 * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateToken() error: %v", err)
		}
	}

	t.Run("success deletes the token", func(t *testing.T) {
		create(t, "token-ok")

		token, ok, err := repo.Consume("token-ok", 3, func(tok *models.LoginToken) bool { return true })
		if err != nil {
			t.Fatalf("Consume() error: %v", err)
		}
		if !ok || token == nil {
			t.Fatal("expected success")
		}
		if token.PersonID != "person-1" {
			t.Errorf("PersonID = %q", token.PersonID)
		}

		_, ok, err = repo.Consume("token-ok", 3, func(tok *models.LoginToken) bool { return true })
		if err != nil {
			t.Fatalf("second Consume() error: %v", err)
		}
		if ok {
			t.Error("expected token to be gone after success")
		}
	})

	t.Run("failed attempts accumulate", func(t *testing.T) {
		create(t, "token-bad")

		for i := 0; i < 3; i++ {
			_, ok, err := repo.Consume("token-bad", 3, func(tok *models.LoginToken) bool { return false })
			if err != nil {
				t.Fatalf("Consume() error: %v", err)
			}
			if ok {
				t.Fatal("expected failure for wrong code")
			}
		}

		// Budget spent: even a matching attempt now fails.
		_, ok, err := repo.Consume("token-bad", 3, func(tok *models.LoginToken) bool { return true })
		if err != nil {
			t.Fatalf("Consume() error: %v", err)
		}
		if ok {
			t.Error("expected exhausted token to fail")
		}
	})

	t.Run("expired token fails without invoking matcher", func(t *testing.T) {
		err := repo.CreateToken(&models.LoginToken{
			TokenID:      "token-expired",
			EmailAddress: "jane@example.com",
			PersonID:     "person-1",
			CodeHash:     "hash",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateToken() error: %v", err)
		}

		called := false
		_, ok, err := repo.Consume("token-expired", 3, func(tok *models.LoginToken) bool {
			called = true
			return true
		})
		if err != nil {
			t.Fatalf("Consume() error: %v", err)
		}
		if ok {
			t.Error("expected expired token to fail")
		}
		if called {
			t.Error("matcher should not run for an expired token")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, ok, err := repo.Consume("missing", 3, func(tok *models.LoginToken) bool { return true })
		if err != nil {
			t.Fatalf("Consume() error: %v", err)
		}
		if ok {
			t.Error("expected unknown token to fail")
		}
	})
}

func TestRegistrationRepository(t *testing.T) {
	db := setupTestDB(t)
	seedEvent(t, db)
	repo := NewRegistrationRepository(db)

	grade := 3
	birth := time.Date(2016, time.May, 10, 0, 0, 0, 0, time.UTC)
	reg := &models.EventRegistration{
		ID:            "reg-1",
		EventID:       "event-1",
		PersonID:      "person-1",
		HouseholdID:   "house-1",
		HouseholdName: "Doe",
		FirstName:     "Lily",
		LastName:      "Doe",
		Gender:        models.GenderFemale,
		BirthDate:     &birth,
		Child:         true,
		Grade:         &grade,
		Group:         "Campers",
	}

	if err := repo.Create(reg); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	exists, err := repo.Exists("event-1", "person-1")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if !exists {
		t.Error("expected registration to exist")
	}

	exists, err = repo.Exists("event-1", "person-2")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Error("expected no registration for person-2")
	}

	rows, err := repo.ListByEvent("event-1")
	if err != nil {
		t.Fatalf("ListByEvent() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.FirstName != "Lily" || got.Group != "Campers" {
		t.Errorf("row = %+v", got)
	}
	if got.Grade == nil || *got.Grade != 3 {
		t.Errorf("Grade = %v, want 3", got.Grade)
	}
	if got.BirthDate == nil {
		t.Error("expected a birth date")
	}
}
