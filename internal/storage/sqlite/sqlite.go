// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect and
	// serializes writers.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreatePerson inserts a new person.
func (s *SQLiteStore) CreatePerson(ctx context.Context, name string) (models.Person, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO people (name, created_at) VALUES (?, ?)",
		name, time.Now().Unix(),
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("failed to insert person: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Person{}, fmt.Errorf("failed to read person id: %w", err)
	}
	return models.Person{ID: id, Name: name}, nil
}

// ListPeople returns all people ordered by id.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM people ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

// CreateExpense inserts an expense and its participants in one transaction.
// Duplicate participant ids are stored once.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e storage.NewExpense) (models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payer, err := lookupPerson(ctx, tx, e.PaidByID)
	if err != nil {
		return models.Expense{}, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (title, amount, paid_by_id, created_at) VALUES (?, ?, ?, ?)",
		e.Title, e.Amount.String(), e.PaidByID, time.Now().Unix(),
	)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to read expense id: %w", err)
	}

	participants := make([]int64, 0, len(e.ParticipantIDs))
	seen := make(map[int64]bool, len(e.ParticipantIDs))
	for _, pid := range e.ParticipantIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if _, err := lookupPerson(ctx, tx, pid); err != nil {
			return models.Expense{}, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, person_id) VALUES (?, ?)",
			id, pid,
		); err != nil {
			return models.Expense{}, fmt.Errorf("failed to insert participant: %w", err)
		}
		participants = append(participants, pid)
	}

	if err := tx.Commit(); err != nil {
		return models.Expense{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.Expense{
		ID:             id,
		Title:          e.Title,
		Amount:         e.Amount,
		PaidBy:         &payer,
		ParticipantIDs: participants,
	}, nil
}

// ListExpenses returns all expenses ordered by id.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.amount, p.id, p.name
		FROM expenses e
		JOIN people p ON p.id = e.paid_by_id
		ORDER BY e.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			e     models.Expense
			payer models.Person
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &payer.ID, &payer.Name); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.PaidBy = &payer
		e.ParticipantIDs = []int64{}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	partRows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, person_id FROM expense_participants ORDER BY expense_id, rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer partRows.Close()

	for partRows.Next() {
		var expenseID, personID int64
		if err := partRows.Scan(&expenseID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].ParticipantIDs = append(expenses[i].ParticipantIDs, personID)
		}
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return expenses, nil
}

func lookupPerson(ctx context.Context, tx *sql.Tx, id int64) (models.Person, error) {
	p := models.Person{ID: id}
	err := tx.QueryRowContext(ctx, "SELECT name FROM people WHERE id = ?", id).Scan(&p.Name)
	if err == sql.ErrNoRows {
		return models.Person{}, fmt.Errorf("%w: %d", storage.ErrUnknownPerson, id)
	}
	if err != nil {
		return models.Person{}, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}
