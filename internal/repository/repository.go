package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/job-tracker/internal/config"
	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/persistence"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// JobFilter captures listing parameters. CreatedBy is mandatory.
type JobFilter struct {
	CreatedBy string
	Status    *domain.JobStatus
	JobType   *domain.JobType
	Search    string
	Sort      domain.JobSort
	Limit     int
	Offset    int
}

// JobRepository encapsulates job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter JobFilter) ([]domain.Job, int64, error)
	CountByStatus(ctx context.Context, userID string) (map[domain.JobStatus]int64, error)
	MonthlyApplications(ctx context.Context, userID string, months int) ([]domain.MonthlyCount, error)
}

// Repositories bundles the implementations bound to one store.
type Repositories struct {
	Users UserRepository
	Jobs  JobRepository
}

// New selects implementations for the connected backend.
func New(db *persistence.Database) (Repositories, error) {
	switch db.Backend {
	case config.BackendMongo:
		return Repositories{
			Users: NewMongoUserRepository(db.Mongo.DB),
			Jobs:  NewMongoJobRepository(db.Mongo.DB),
		}, nil
	case config.BackendPostgres:
		pool := db.Postgres.PoolHandle()
		return Repositories{
			Users: NewUserRepository(pool),
			Jobs:  NewJobRepository(pool),
		}, nil
	default:
		return Repositories{}, fmt.Errorf("no repositories for backend %q", db.Backend)
	}
}

func normalizeLimit(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
