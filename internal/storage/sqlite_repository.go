package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

const (
	birthDateLayout  = config.DateFormatFullDash
	categoryStateKey = "overlay"
)

// SQLiteRepository implements Repository and CategoryStateRepository on a
// single SQLite database. Scheduled messages are stored as a JSON column.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New(config.ErrNilDB)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open(config.SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrOpenDB, err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// GetAll returns every birthday in insertion order.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]engine.Birthday, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, birth_date, category, zodiac_sign, notes, photo, remember_photo, calendar_event_id, scheduled_messages
		FROM birthdays ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]engine.Birthday, 0)
	for rows.Next() {
		b, scanErr := scanBirthday(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Add(ctx context.Context, b engine.Birthday) error {
	messages, err := encodeMessages(b.ScheduledMessages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO birthdays (id, name, birth_date, category, zodiac_sign, notes, photo, remember_photo, calendar_event_id, scheduled_messages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.BirthDate.Format(birthDateLayout), b.Category, b.ZodiacSign,
		b.Notes, b.Photo, boolInt(b.RememberPhoto), b.CalendarEventID, messages,
	)
	return err
}

func (r *SQLiteRepository) Update(ctx context.Context, b engine.Birthday) error {
	messages, err := encodeMessages(b.ScheduledMessages)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE birthdays
		SET name = ?, birth_date = ?, category = ?, zodiac_sign = ?, notes = ?, photo = ?, remember_photo = ?, calendar_event_id = ?, scheduled_messages = ?
		WHERE id = ?`,
		b.Name, b.BirthDate.Format(birthDateLayout), b.Category, b.ZodiacSign,
		b.Notes, b.Photo, boolInt(b.RememberPhoto), b.CalendarEventID, messages, b.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM birthdays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Clear removes every birthday. Category state is left untouched.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM birthdays`)
	return err
}

// LoadCategoryState returns the stored overlay layers, or an empty state.
func (r *SQLiteRepository) LoadCategoryState(ctx context.Context) (CategoryState, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM category_state WHERE key = ?`, categoryStateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return CategoryState{}, nil
	}
	if err != nil {
		return CategoryState{}, err
	}

	var state CategoryState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return CategoryState{}, fmt.Errorf("%s: %w", config.ErrDecodeState, err)
	}
	return state, nil
}

func (r *SQLiteRepository) SaveCategoryState(ctx context.Context, state CategoryState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeState, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO category_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		categoryStateKey, string(raw),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBirthday(s scanner) (engine.Birthday, error) {
	var (
		b             engine.Birthday
		birthDate     string
		rememberPhoto int
		messages      string
	)
	if err := s.Scan(&b.ID, &b.Name, &birthDate, &b.Category, &b.ZodiacSign, &b.Notes, &b.Photo,
		&rememberPhoto, &b.CalendarEventID, &messages); err != nil {
		return engine.Birthday{}, err
	}

	parsed, err := time.Parse(birthDateLayout, birthDate)
	if err != nil {
		return engine.Birthday{}, fmt.Errorf("parse birth_date %q: %w", birthDate, err)
	}
	b.BirthDate = parsed
	b.RememberPhoto = rememberPhoto == 1

	if err := json.Unmarshal([]byte(messages), &b.ScheduledMessages); err != nil {
		return engine.Birthday{}, fmt.Errorf("%s: %w", config.ErrDecodeMessages, err)
	}
	if len(b.ScheduledMessages) == 0 {
		b.ScheduledMessages = nil
	}
	return b, nil
}

func encodeMessages(messages []engine.ScheduledMessage) (string, error) {
	if messages == nil {
		messages = []engine.ScheduledMessage{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrEncodeMessages, err)
	}
	return string(raw), nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
