// Package history reads and records test names in a results database so
// planning runs can dedup against tests that already exist.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"api-test-planner/internal/models"
)

// Config holds database connection configuration
type Config struct {
	Type     string // postgres|mysql|sqlserver
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Table    string
}

// Store provides access to the recorded test names.
type Store struct {
	config Config
	db     *sql.DB
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open connects to the configured database and verifies the connection.
func Open(config Config) (*Store, error) {
	if config.Table == "" {
		config.Table = "test_results"
	}
	if !identRe.MatchString(config.Table) {
		return nil, fmt.Errorf("invalid table name: %s", config.Table)
	}

	var dsn string
	switch config.Type {
	case "postgres":
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.User, config.Password, config.Database)
	case "mysql":
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			config.User, config.Password, config.Host, config.Port, config.Database)
	case "sqlserver":
		dsn = fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			config.Host, config.Port, config.User, config.Password, config.Database)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := sql.Open(config.Type, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{config: config, db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ExistingTestNames returns every distinct recorded test name, sorted.
func (s *Store) ExistingTestNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT test_name FROM %s ORDER BY test_name", s.config.Table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query test names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan test name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test names: %w", err)
	}
	return names, nil
}

// RecordPlan inserts the planned scenarios so future runs dedup against
// them. The placeholder style differs per driver.
func (s *Store) RecordPlan(ctx context.Context, plan *models.TestPlan) error {
	var query string
	switch s.config.Type {
	case "postgres":
		query = fmt.Sprintf(
			"INSERT INTO %s (test_name, endpoint, test_type, expected_status) VALUES ($1, $2, $3, $4) ON CONFLICT (test_name) DO NOTHING",
			s.config.Table)
	case "sqlserver":
		query = fmt.Sprintf(
			"INSERT INTO %s (test_name, endpoint, test_type, expected_status) VALUES (@p1, @p2, @p3, @p4)",
			s.config.Table)
	default:
		query = fmt.Sprintf(
			"INSERT IGNORE INTO %s (test_name, endpoint, test_type, expected_status) VALUES (?, ?, ?, ?)",
			s.config.Table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, scenario := range plan.Scenarios {
		if _, err := tx.ExecContext(ctx, query,
			scenario.TestName, scenario.Endpoint, scenario.TestType, scenario.ExpectedStatus); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record scenario %s: %w", scenario.TestName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}
