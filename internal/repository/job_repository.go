package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-tracker/internal/domain"
)

const jobColumns = `id, created_by, company, position, status, job_type, job_location,
               applied_at, created_at, updated_at`

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates a Postgres-backed repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (created_by, company, position, status, job_type, job_location, applied_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		job.CreatedBy,
		job.Company,
		job.Position,
		job.Status,
		job.JobType,
		job.JobLocation,
		job.AppliedAt,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	return translatePgError(err)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	if _, err := uuid.Parse(job.ID); err != nil {
		return ErrNotFound
	}
	const query = `
        UPDATE jobs SET company=$1, position=$2, status=$3, job_type=$4, job_location=$5,
            applied_at=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		job.Company,
		job.Position,
		job.Status,
		job.JobType,
		job.JobLocation,
		job.AppliedAt,
		job.ID,
	).Scan(&job.UpdatedAt)
	return translatePgError(err)
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1`
	jobs, err := r.query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter) ([]domain.Job, int64, error) {
	where, args := pgJobWhere(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizeLimit(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		jobColumns, where, pgOrderBy(filter.Sort), limit, offset)

	jobs, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *jobRepository) CountByStatus(ctx context.Context, userID string) (map[domain.JobStatus]int64, error) {
	counts := make(map[domain.JobStatus]int64, len(domain.JobStatuses))
	if _, err := uuid.Parse(userID); err != nil {
		return counts, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs WHERE created_by=$1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.JobStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *jobRepository) MonthlyApplications(ctx context.Context, userID string, months int) ([]domain.MonthlyCount, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	const query = `
        SELECT EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*)
        FROM jobs WHERE created_by=$1
        GROUP BY year, month
        ORDER BY year DESC, month DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MonthlyCount
	for rows.Next() {
		var year, month int
		var count int64
		if err := rows.Scan(&year, &month, &count); err != nil {
			return nil, err
		}
		result = append(result, domain.MonthlyCount{Year: year, Month: time.Month(month), Count: count})
	}
	return result, rows.Err()
}

func (r *jobRepository) query(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// pgJobWhere builds the WHERE clause and its positional args for a listing.
func pgJobWhere(filter JobFilter) (string, []any) {
	clauses := []string{"created_by=$1"}
	args := []any{filter.CreatedBy}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.JobType != nil {
		args = append(args, *filter.JobType)
		clauses = append(clauses, fmt.Sprintf("job_type=$%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(position) LIKE %s OR LOWER(company) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func pgOrderBy(sort domain.JobSort) string {
	switch sort {
	case domain.JobSortOldest:
		return "created_at ASC"
	case domain.JobSortAZ:
		return "position ASC"
	case domain.JobSortZA:
		return "position DESC"
	default:
		return "created_at DESC"
	}
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.CreatedBy,
			&job.Company,
			&job.Position,
			&job.Status,
			&job.JobType,
			&job.JobLocation,
			&job.AppliedAt,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}
