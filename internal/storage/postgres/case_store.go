// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
)

const defaultTable = "court_cases"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CaseStoreConfig controls the Postgres connection pool used for case rows.
type CaseStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Ping(context.Context) error
	Close()
}

// CaseStore reads and writes court case rows.
type CaseStore struct {
	pool  pool
	table string
}

// NewCaseStore connects a pgx pool and verifies the connection.
func NewCaseStore(ctx context.Context, cfg CaseStoreConfig) (*CaseStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &CaseStore{pool: p, table: table}, nil
}

// NewCaseStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewCaseStoreWithPool(p pool, table string) (*CaseStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &CaseStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *CaseStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks database connectivity.
func (s *CaseStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// EnsureSchema creates the case table when it does not exist.
func (s *CaseStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	case_number    text PRIMARY KEY,
	process_number text NOT NULL DEFAULT '',
	origin_number  text NOT NULL DEFAULT '',
	court          text NOT NULL DEFAULT '',
	crawl_status   text NOT NULL DEFAULT '',
	updated_at     timestamptz NOT NULL DEFAULT now()
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// UpsertMany writes every record in one statement, replacing all columns on
// a case number conflict. Within a batch the last record for a case number wins.
func (s *CaseStore) UpsertMany(ctx context.Context, cases []courtcase.CourtCase) error {
	if len(cases) == 0 {
		return nil
	}
	rows := lastWriteWins(cases)
	caseNumbers := make([]string, len(rows))
	processNumbers := make([]string, len(rows))
	originNumbers := make([]string, len(rows))
	courts := make([]string, len(rows))
	statuses := make([]string, len(rows))
	for i, c := range rows {
		caseNumbers[i] = c.CaseNumber
		processNumbers[i] = c.ProcessNumber
		originNumbers[i] = c.OriginNumber
		courts[i] = c.Court
		statuses[i] = string(c.CrawlStatus)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (case_number, process_number, origin_number, court, crawl_status)
SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[])
ON CONFLICT (case_number) DO UPDATE SET
	process_number = EXCLUDED.process_number,
	origin_number = EXCLUDED.origin_number,
	court = EXCLUDED.court,
	crawl_status = EXCLUDED.crawl_status,
	updated_at = now()`, s.table)

	if _, err := s.pool.Exec(ctx, query, caseNumbers, processNumbers, originNumbers, courts, statuses); err != nil {
		return fmt.Errorf("upsert court cases: %w", err)
	}
	return nil
}

// FindManyByCaseNumbers returns the stored records among caseNumbers, ordered
// by case number.
func (s *CaseStore) FindManyByCaseNumbers(ctx context.Context, caseNumbers []string) ([]courtcase.CourtCase, error) {
	if len(caseNumbers) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
SELECT case_number, process_number, origin_number, court, crawl_status
FROM %s
WHERE case_number = ANY($1)
ORDER BY case_number`, s.table)

	rows, err := s.pool.Query(ctx, query, caseNumbers)
	if err != nil {
		return nil, fmt.Errorf("query court cases: %w", err)
	}
	defer rows.Close()

	var out []courtcase.CourtCase
	for rows.Next() {
		var (
			c      courtcase.CourtCase
			status string
		)
		if err := rows.Scan(&c.CaseNumber, &c.ProcessNumber, &c.OriginNumber, &c.Court, &status); err != nil {
			return nil, fmt.Errorf("scan court case row: %w", err)
		}
		c.CrawlStatus = courtcase.CrawlStatus(status)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate court case rows: %w", err)
	}
	return out, nil
}

// lastWriteWins collapses duplicate case numbers, keeping the position of the
// first occurrence and the fields of the last. Postgres rejects a single
// ON CONFLICT statement that touches the same row twice.
func lastWriteWins(cases []courtcase.CourtCase) []courtcase.CourtCase {
	index := make(map[string]int, len(cases))
	out := make([]courtcase.CourtCase, 0, len(cases))
	for _, c := range cases {
		if i, ok := index[c.CaseNumber]; ok {
			out[i] = c
			continue
		}
		index[c.CaseNumber] = len(out)
		out = append(out, c)
	}
	return out
}
