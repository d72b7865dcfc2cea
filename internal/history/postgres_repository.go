package history

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL solve history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a solve record by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*SolveRecord, error) {
	query := `
		SELECT
			id, profile, location_count, vehicle_count, job_count,
			sentinel_cells, unassigned, solver_code, total_cost,
			build_duration_seconds, solve_duration_seconds, created_at
		FROM solve_records
		WHERE id = $1
	`

	var record SolveRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.Profile,
		&record.LocationCount,
		&record.VehicleCount,
		&record.JobCount,
		&record.SentinelCells,
		&record.Unassigned,
		&record.SolverCode,
		&record.TotalCost,
		&record.BuildDuration,
		&record.SolveDuration,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &record, nil
}

// List retrieves solve records, newest first, with pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT
			id, profile, location_count, vehicle_count, job_count,
			sentinel_cells, unassigned, solver_code, total_cost,
			build_duration_seconds, solve_duration_seconds, created_at
		FROM solve_records
		WHERE ($1 = '' OR created_at < (SELECT created_at FROM solve_records WHERE id = $1))
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*SolveRecord
	for rows.Next() {
		var record SolveRecord
		err := rows.Scan(
			&record.ID,
			&record.Profile,
			&record.LocationCount,
			&record.VehicleCount,
			&record.JobCount,
			&record.SentinelCells,
			&record.Unassigned,
			&record.SolverCode,
			&record.TotalCost,
			&record.BuildDuration,
			&record.SolveDuration,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: records,
	}

	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

// Create stores a new solve record.
func (r *PostgresRepository) Create(ctx context.Context, record *SolveRecord) error {
	query := `
		INSERT INTO solve_records (
			id, profile, location_count, vehicle_count, job_count,
			sentinel_cells, unassigned, solver_code, total_cost,
			build_duration_seconds, solve_duration_seconds, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Profile,
		record.LocationCount,
		record.VehicleCount,
		record.JobCount,
		record.SentinelCells,
		record.Unassigned,
		record.SolverCode,
		record.TotalCost,
		record.BuildDuration,
		record.SolveDuration,
		record.CreatedAt,
	)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
