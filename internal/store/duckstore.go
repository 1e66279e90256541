// Package store persists projects, timesheets and users in DuckDB.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/billrate-system/backend/internal/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// BillingStore defines the persistence operations the pipeline needs.
type BillingStore interface {
	CreateProject(ctx context.Context, name string) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, name string) (*models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	ProjectNames(ctx context.Context) ([]string, error)

	TimesheetKeys(ctx context.Context) (map[models.NaturalKey]struct{}, error)
	BulkInsertTimesheets(ctx context.Context, rows []*models.Timesheet) error
	ListTimesheets(ctx context.Context, limit int) ([]*models.Timesheet, error)
	GetTimesheet(ctx context.Context, id int64) (*models.Timesheet, error)
	RenameSheet(ctx context.Context, oldName, newName string) (int64, error)
	CountTimesheets(ctx context.Context) (int, error)

	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)

	Close() error
}

// DuckStore implements BillingStore on an embedded DuckDB database.
type DuckStore struct {
	db     *sql.DB
	dbPath string

	mu          sync.Mutex
	nextSheetID int64
}

const schema = `
CREATE SEQUENCE IF NOT EXISTS seq_projects START 1;
CREATE SEQUENCE IF NOT EXISTS seq_users START 1;
CREATE TABLE IF NOT EXISTS projects (
	id   BIGINT PRIMARY KEY,
	name VARCHAR NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS users (
	id            BIGINT PRIMARY KEY,
	username      VARCHAR NOT NULL UNIQUE,
	password_hash VARCHAR NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS timesheets (
	id            BIGINT PRIMARY KEY,
	employee_id   BIGINT NOT NULL,
	billable_rate DOUBLE NOT NULL,
	project_id    BIGINT NOT NULL,
	date          VARCHAR,
	start_time    VARCHAR NOT NULL,
	end_time      VARCHAR NOT NULL,
	sheet_name    VARCHAR NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	UNIQUE (employee_id, project_id, date, start_time, end_time)
);
`

// NewDuckStore opens (or creates) the billing database at dbPath.
// An empty path opens an in-memory database, which tests rely on.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	// The Appender needs the same in-memory database on every connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &DuckStore{db: db, dbPath: dbPath}

	var maxID sql.NullInt64
	if err := db.QueryRow("SELECT MAX(id) FROM timesheets").Scan(&maxID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read timesheet id watermark: %w", err)
	}
	s.nextSheetID = maxID.Int64 + 1

	return s, nil
}

// Close closes the underlying database.
func (s *DuckStore) Close() error {
	return s.db.Close()
}

// isConstraintError reports whether err looks like a uniqueness violation.
func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint") || strings.Contains(msg, "duplicate")
}

// Projects

// CreateProject inserts a project with a unique name.
func (s *DuckStore) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO projects (id, name) VALUES (nextval('seq_projects'), ?) RETURNING id",
		name).Scan(&id)
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("project %q: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting project: %w", err)
	}

	return &models.Project{ID: id, Name: name}, nil
}

// UpdateProject renames a project.
func (s *DuckStore) UpdateProject(ctx context.Context, id int64, name string) (*models.Project, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE projects SET name = ? WHERE id = ?", name, id)
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("project %q: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}

	return &models.Project{ID: id, Name: name}, nil
}

// GetProjectByName looks a project up by its exact stored name.
func (s *DuckStore) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM projects WHERE name = ?", name).
		Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects ordered by name.
func (s *DuckStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var list []*models.Project
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ProjectNames returns the set of registered project names.
func (s *DuckStore) ProjectNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM projects")
	if err != nil {
		return nil, fmt.Errorf("listing project names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning project name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Timesheets

// TimesheetKeys loads the natural keys of all persisted rows for dedup.
func (s *DuckStore) TimesheetKeys(ctx context.Context) (map[models.NaturalKey]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT employee_id, project_id, date, start_time, end_time FROM timesheets")
	if err != nil {
		return nil, fmt.Errorf("loading timesheet keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[models.NaturalKey]struct{})
	for rows.Next() {
		var k models.NaturalKey
		var date sql.NullString
		if err := rows.Scan(&k.EmployeeID, &k.ProjectID, &date, &k.StartTime, &k.EndTime); err != nil {
			return nil, fmt.Errorf("scanning timesheet key: %w", err)
		}
		k.Date = date.String
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

// BulkInsertTimesheets inserts a batch of rows through the DuckDB Appender.
// The batch commits as a whole; a failed append aborts the entire insert.
func (s *DuckStore) BulkInsertTimesheets(ctx context.Context, sheets []*models.Timesheet) error {
	if len(sheets) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	now := time.Now().UTC()
	baseID := s.nextSheetID

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "timesheets")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, ts := range sheets {
			ts.ID = baseID + int64(i)
			ts.CreatedAt = now

			var date any
			if ts.Date != "" {
				date = ts.Date
			}

			err := appender.AppendRow(
				ts.ID,
				ts.EmployeeID,
				ts.BillableRate,
				ts.ProjectID,
				date,
				ts.StartTime,
				ts.EndTime,
				ts.SheetName,
				ts.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}

		return appender.Flush()
	})
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("bulk insert: %w", ErrDuplicate)
		}
		return fmt.Errorf("appender error: %w", err)
	}

	s.nextSheetID = baseID + int64(len(sheets))
	return nil
}

const timesheetColumns = `t.id, t.employee_id, t.billable_rate, t.project_id, p.name,
	t.date, t.start_time, t.end_time, t.sheet_name, t.created_at`

func scanTimesheet(rows interface{ Scan(...any) error }) (*models.Timesheet, error) {
	ts := &models.Timesheet{}
	var date sql.NullString
	err := rows.Scan(&ts.ID, &ts.EmployeeID, &ts.BillableRate, &ts.ProjectID, &ts.ProjectName,
		&date, &ts.StartTime, &ts.EndTime, &ts.SheetName, &ts.CreatedAt)
	if err != nil {
		return nil, err
	}
	ts.Date = date.String
	return ts, nil
}

// ListTimesheets returns persisted rows, newest first.
func (s *DuckStore) ListTimesheets(ctx context.Context, limit int) ([]*models.Timesheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM timesheets t
		JOIN projects p ON p.id = t.project_id
		ORDER BY t.created_at DESC, t.id DESC`, timesheetColumns)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing timesheets: %w", err)
	}
	defer rows.Close()

	var list []*models.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning timesheet: %w", err)
		}
		list = append(list, ts)
	}
	return list, rows.Err()
}

// GetTimesheet returns one row by ID.
func (s *DuckStore) GetTimesheet(ctx context.Context, id int64) (*models.Timesheet, error) {
	query := fmt.Sprintf(`SELECT %s FROM timesheets t
		JOIN projects p ON p.id = t.project_id WHERE t.id = ?`, timesheetColumns)

	ts, err := scanTimesheet(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timesheet %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("querying timesheet: %w", err)
	}
	return ts, nil
}

// RenameSheet rewrites the sheet name of every row carrying oldName and
// returns how many rows changed.
func (s *DuckStore) RenameSheet(ctx context.Context, oldName, newName string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE timesheets SET sheet_name = ? WHERE sheet_name = ?", newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("renaming sheet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("renaming sheet: %w", err)
	}
	return affected, nil
}

// CountTimesheets returns the total number of persisted rows.
func (s *DuckStore) CountTimesheets(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timesheets").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting timesheets: %w", err)
	}
	return count, nil
}

// Users

// CreateUser inserts a user with a unique username.
func (s *DuckStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO users (id, username, password_hash, created_at) VALUES (nextval('seq_users'), ?, ?, ?) RETURNING id",
		username, passwordHash, now).Scan(&id)
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return &models.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// GetUserByUsername looks a user up by username.
func (s *DuckStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// GetUser looks a user up by ID.
func (s *DuckStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}
