package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"travisconnect/internal/logger"
	"travisconnect/internal/params"
	"travisconnect/internal/storage/models"
)

// ErrNotFound is returned when a node or subscription does not exist
var ErrNotFound = errors.New("not found")

// Store persists nodes, subscriptions and audit logs in SQLite
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the SQLite database at dbPath and creates the schema
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite has a single writer; the pool mostly serves concurrent reads
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	logger.Info("Database initialized successfully", "path", dbPath)
	return s, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS node_parameters (
		node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (node_id, key)
	);
	CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		project TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS subscription_parameters (
		subscription_id INTEGER NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (subscription_id, key)
	);
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		caller TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		subscription INTEGER NOT NULL DEFAULT 0,
		job_name TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	`)
	return err
}

// SaveNode creates or updates a node and replaces its parameters
func (s *Store) SaveNode(ctx context.Context, node models.Node, p params.Parameters) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO nodes (id, name, created_at) VALUES (:id, :name, :created_at)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`, node); err != nil {
		return fmt.Errorf("saving node %s: %w", node.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_parameters WHERE node_id = ?`, node.ID); err != nil {
		return err
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO node_parameters (node_id, key, value) VALUES (?, ?, ?)`, node.ID, key, value); err != nil {
			return fmt.Errorf("saving parameter %s of node %s: %w", key, node.ID, err)
		}
	}

	return tx.Commit()
}

// GetNode returns a node by its identifier
func (s *Store) GetNode(ctx context.Context, id string) (models.Node, error) {
	var node models.Node
	err := s.db.GetContext(ctx, &node, `SELECT id, name, created_at FROM nodes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Node{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return node, err
}

// ListNodes returns every node ordered by identifier
func (s *Store) ListNodes(ctx context.Context) ([]models.Node, error) {
	nodes := []models.Node{}
	err := s.db.SelectContext(ctx, &nodes, `SELECT id, name, created_at FROM nodes ORDER BY id`)
	return nodes, err
}

// NodeParameters returns the parameters of a node
func (s *Store) NodeParameters(ctx context.Context, node string) (params.Parameters, error) {
	if _, err := s.GetNode(ctx, node); err != nil {
		return params.Parameters{}, err
	}
	return s.parameters(ctx, `SELECT key, value FROM node_parameters WHERE node_id = ?`, node)
}

// CreateSubscription binds a project to a node with its own parameters
func (s *Store) CreateSubscription(ctx context.Context, node, project string, p params.Parameters) (int, error) {
	if _, err := s.GetNode(ctx, node); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO subscriptions (node_id, project, created_at) VALUES (?, ?, ?)`,
		node, project, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("creating subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subscription_parameters (subscription_id, key, value) VALUES (?, ?, ?)`, id, key, value); err != nil {
			return 0, fmt.Errorf("saving parameter %s of subscription %d: %w", key, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(id), nil
}

// GetSubscription returns a subscription by its identifier
func (s *Store) GetSubscription(ctx context.Context, id int) (models.Subscription, error) {
	var sub models.Subscription
	err := s.db.GetContext(ctx, &sub, `SELECT id, node_id, project, created_at FROM subscriptions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	return sub, err
}

// DeleteSubscription removes a subscription and its parameters
func (s *Store) DeleteSubscription(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	return nil
}

// SubscriptionParameters returns the node parameters of a subscription
// overlaid with the subscription's own parameters
func (s *Store) SubscriptionParameters(ctx context.Context, id int) (params.Parameters, error) {
	sub, err := s.GetSubscription(ctx, id)
	if err != nil {
		return params.Parameters{}, err
	}
	node, err := s.NodeParameters(ctx, sub.Node)
	if err != nil {
		return params.Parameters{}, err
	}
	own, err := s.parameters(ctx, `SELECT key, value FROM subscription_parameters WHERE subscription_id = ?`, id)
	if err != nil {
		return params.Parameters{}, err
	}
	return node.Merge(own), nil
}

func (s *Store) parameters(ctx context.Context, query string, arg any) (params.Parameters, error) {
	var rows []models.Parameter
	if err := s.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return params.Parameters{}, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return params.New(values), nil
}

// InsertAuditLog inserts a new audit log entry
func (s *Store) InsertAuditLog(ctx context.Context, log models.AuditLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	log.Timestamp = log.Timestamp.UTC()

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO audit_logs (timestamp, caller, method, path, status, subscription, job_name, result, error)
		 VALUES (:timestamp, :caller, :method, :path, :status, :subscription, :job_name, :result, :error)`, log)
	if err != nil {
		logger.Error("Failed to insert audit log", "error", err)
		return err
	}
	return nil
}

// GetAuditLogs retrieves audit logs with pagination, newest first
func (s *Store) GetAuditLogs(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	logs := []models.AuditLog{}
	err := s.db.SelectContext(ctx, &logs,
		`SELECT id, timestamp, caller, method, path, status, subscription, job_name, result, error
		 FROM audit_logs ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
