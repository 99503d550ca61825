package archive

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/screenconfig"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no run is archived for the requested date
var ErrNotFound = contracts.ErrReportNotFound

// RunSummary is one archived run without its hits
type RunSummary struct {
	Date        contracts.SessionDate `json:"date"`
	GeneratedAt time.Time             `json:"generated_at"`
	Status      contracts.RunStatus   `json:"status"`
	Candidates  int                   `json:"candidates"`
	Hits        int                   `json:"hits"`
	Skipped     int                   `json:"skipped"`
	ProfileHash string                `json:"profile_hash"`
}

// Repository handles report archive persistence
// ⭐ SSOT: 리포트 이력 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new archive repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the archive tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure archive schema: %w", err)
	}
	return nil
}

// SaveProfile stores the screening profile a run was made with.
// Profiles are keyed by hash, so saving the same profile twice is a no-op.
func (r *Repository) SaveProfile(ctx context.Context, snapshot *screenconfig.ProfileSnapshot) error {
	query := `
		INSERT INTO flipwatch.profiles (profile_hash, profile_id, profile_yaml, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_hash) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		snapshot.ProfileHash,
		snapshot.ProfileID,
		snapshot.ProfileYAML,
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// GetProfile retrieves a stored profile by hash
func (r *Repository) GetProfile(ctx context.Context, hash string) (*screenconfig.ProfileSnapshot, error) {
	query := `
		SELECT profile_hash, profile_id, profile_yaml, created_at
		FROM flipwatch.profiles
		WHERE profile_hash = $1
	`

	var snapshot screenconfig.ProfileSnapshot
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&snapshot.ProfileHash,
		&snapshot.ProfileID,
		&snapshot.ProfileYAML,
		&snapshot.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &snapshot, nil
}

// SaveReport stores a run report, replacing any earlier run for the same session
func (r *Repository) SaveReport(ctx context.Context, report *contracts.RunReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO flipwatch.runs (
			session_date, generated_at, status, candidates, skipped, profile_hash, diagnostic, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_date) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			status = EXCLUDED.status,
			candidates = EXCLUDED.candidates,
			skipped = EXCLUDED.skipped,
			profile_hash = EXCLUDED.profile_hash,
			diagnostic = EXCLUDED.diagnostic,
			report = EXCLUDED.report
	`

	_, err = tx.Exec(ctx, query,
		report.Date.Time(), report.GeneratedAt, string(report.Status),
		len(report.Candidates), len(report.Skipped), report.Params.ProfileHash,
		report.Diagnostic, reportJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	// 재실행 시 이전 적중 교체
	if _, err := tx.Exec(ctx, "DELETE FROM flipwatch.hits WHERE session_date = $1", report.Date.Time()); err != nil {
		return fmt.Errorf("failed to delete old hits: %w", err)
	}

	if len(report.Hits) > 0 {
		rows := make([][]interface{}, len(report.Hits))
		for i, h := range report.Hits {
			rows[i] = []interface{}{report.Date.Time(), i, h.SecurityID, h.BrokerName, h.NetBuy}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"flipwatch", "hits"},
			[]string{"session_date", "seq", "security_id", "broker_name", "net_buy"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to insert hits: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetReport retrieves the archived report for a session
func (r *Repository) GetReport(ctx context.Context, date contracts.SessionDate) (*contracts.RunReport, error) {
	query := `
		SELECT report
		FROM flipwatch.runs
		WHERE session_date = $1
	`

	var reportJSON []byte
	err := r.pool.QueryRow(ctx, query, date.Time()).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return decodeReport(reportJSON)
}

// GetLatestReport retrieves the most recent archived report
func (r *Repository) GetLatestReport(ctx context.Context) (*contracts.RunReport, error) {
	query := `
		SELECT report
		FROM flipwatch.runs
		ORDER BY session_date DESC
		LIMIT 1
	`

	var reportJSON []byte
	err := r.pool.QueryRow(ctx, query).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	return decodeReport(reportJSON)
}

// ListRuns lists archived runs in [from, to], newest first
func (r *Repository) ListRuns(ctx context.Context, from, to contracts.SessionDate) ([]RunSummary, error) {
	query := `
		SELECT r.session_date, r.generated_at, r.status, r.candidates, r.skipped, r.profile_hash,
		       (SELECT COUNT(*) FROM flipwatch.hits h WHERE h.session_date = r.session_date)
		FROM flipwatch.runs r
		WHERE r.session_date BETWEEN $1 AND $2
		ORDER BY r.session_date DESC
	`

	rows, err := r.pool.Query(ctx, query, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var (
			s      RunSummary
			day    time.Time
			status string
			hits   int64
		)
		if err := rows.Scan(&day, &s.GeneratedAt, &status, &s.Candidates, &s.Skipped, &s.ProfileHash, &hits); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.Date = contracts.SessionDateOf(day)
		s.Status = contracts.RunStatus(status)
		s.Hits = int(hits)
		runs = append(runs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func decodeReport(data []byte) (*contracts.RunReport, error) {
	var report contracts.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
