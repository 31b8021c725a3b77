// Package sqlite implements storage.Roster on top of SQLite.
//
// The database is always opened in memory mode
// (file:<name>?mode=memory&cache=shared), so the roster lives exactly as
// long as the process. The blank import of go-sqlite3 registers the
// "sqlite3" driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-registry/internal/config"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite holds the connection pool.
type SQLite struct {
	Db *sql.DB
}

// New opens the in-memory database named by cfg.Storage.Name and creates
// the students table.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.Storage.Name)
}

// Open opens (or joins) the named in-memory database.
func Open(name string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// A shared-cache memory database is dropped when its last connection
	// closes; keep one open for the lifetime of the pool. Shared-cache
	// connections lock whole tables against each other ("database table is
	// locked"), so the pool is also capped at that one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// AUTOINCREMENT (rather than plain INTEGER PRIMARY KEY) guarantees ids
	// of removed rows are never handed out again.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT    NOT NULL,
			last_name  TEXT    NOT NULL,
			email      TEXT    NOT NULL,
			programme  TEXT    NOT NULL,
			year       TEXT    NOT NULL,
			interests  TEXT    NOT NULL DEFAULT '',
			photo      TEXT    NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the pool, which discards the database.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func (s *SQLite) Add(student types.Student) (types.Student, error) {
	stmt, err := s.Db.Prepare(`
		INSERT INTO students (first_name, last_name, email, programme, year, interests, photo)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(
		student.FirstName,
		student.LastName,
		student.Email,
		student.Programme,
		student.Year,
		student.Interests,
		student.Photo,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: last insert id: %w", err)
	}

	student.ID = lastID
	return student, nil
}

const selectColumns = "SELECT id, first_name, last_name, email, programme, year, interests, photo FROM students"

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var s types.Student
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.Programme,
		&s.Year,
		&s.Interests,
		&s.Photo,
	)
	return s, err
}

func (s *SQLite) FindByID(id int64) (types.Student, error) {
	stmt, err := s.Db.Prepare(selectColumns + " WHERE id = ? LIMIT 1")
	if err != nil {
		return types.Student{}, fmt.Errorf("FindByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRow(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("FindByID %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("FindByID: scan: %w", err)
	}

	return student, nil
}

func (s *SQLite) RemoveByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("RemoveByID: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id); err != nil {
		return fmt.Errorf("RemoveByID: exec: %w", err)
	}

	return nil
}

func (s *SQLite) All() ([]types.Student, error) {
	rows, err := s.Db.Query(selectColumns + " ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("All: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("All: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("All: rows iteration: %w", err)
	}

	return students, nil
}

func (s *SQLite) Reset() error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("Reset: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM students"); err != nil {
		return fmt.Errorf("Reset: delete: %w", err)
	}
	// sqlite_sequence holds the AUTOINCREMENT high-water mark.
	if _, err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = 'students'"); err != nil {
		return fmt.Errorf("Reset: sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Reset: commit: %w", err)
	}
	return nil
}
