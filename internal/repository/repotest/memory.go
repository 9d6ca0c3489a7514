// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/repository"
)

// Users is an in-memory UserRepository with a unique email constraint.
type Users struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	Calls struct{ Create, Update int }
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: map[string]domain.User{}}
}

var _ repository.UserRepository = (*Users)(nil)

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.byID {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	u.byID[user.ID] = *user
	u.Calls.Create++
	return nil
}

func (u *Users) Update(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range u.byID {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now().UTC()
	u.byID[user.ID] = *user
	u.Calls.Update++
	return nil
}

func (u *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byID {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Jobs is an in-memory JobRepository.
type Jobs struct {
	mu    sync.Mutex
	byID  map[string]domain.Job
	clock func() time.Time
}

// NewJobs returns an empty store.
func NewJobs() *Jobs {
	return &Jobs{byID: map[string]domain.Job{}, clock: func() time.Time { return time.Now().UTC() }}
}

// SetClock overrides the creation timestamp source.
func (j *Jobs) SetClock(clock func() time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.clock = clock
}

var _ repository.JobRepository = (*Jobs)(nil)

func (j *Jobs) Create(_ context.Context, job *domain.Job) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.clock()
	job.ID = uuid.NewString()
	job.CreatedAt = now
	job.UpdatedAt = now
	j.byID[job.ID] = *job
	return nil
}

func (j *Jobs) Update(_ context.Context, job *domain.Job) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.byID[job.ID]; !ok {
		return repository.ErrNotFound
	}
	job.UpdatedAt = j.clock()
	j.byID[job.ID] = *job
	return nil
}

func (j *Jobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &job, nil
}

func (j *Jobs) Delete(_ context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(j.byID, id)
	return nil
}

func (j *Jobs) List(_ context.Context, filter repository.JobFilter) ([]domain.Job, int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []domain.Job
	for _, job := range j.byID {
		if job.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		if filter.JobType != nil && job.JobType != *filter.JobType {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(job.Position), term) &&
			!strings.Contains(strings.ToLower(job.Company), term) {
			continue
		}
		matched = append(matched, job)
	}

	sort.SliceStable(matched, func(a, b int) bool {
		switch filter.Sort {
		case domain.JobSortOldest:
			return matched[a].CreatedAt.Before(matched[b].CreatedAt)
		case domain.JobSortAZ:
			return matched[a].Position < matched[b].Position
		case domain.JobSortZA:
			return matched[a].Position > matched[b].Position
		default:
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		}
	})

	total := int64(len(matched))
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]domain.Job(nil), matched[start:end]...), total, nil
}

func (j *Jobs) CountByStatus(_ context.Context, userID string) (map[domain.JobStatus]int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	counts := map[domain.JobStatus]int64{}
	for _, job := range j.byID {
		if job.CreatedBy == userID {
			counts[job.Status]++
		}
	}
	return counts, nil
}

func (j *Jobs) MonthlyApplications(_ context.Context, userID string, months int) ([]domain.MonthlyCount, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	type key struct {
		year  int
		month time.Month
	}
	buckets := map[key]int64{}
	for _, job := range j.byID {
		if job.CreatedBy == userID {
			buckets[key{job.CreatedAt.Year(), job.CreatedAt.Month()}]++
		}
	}
	result := make([]domain.MonthlyCount, 0, len(buckets))
	for k, count := range buckets {
		result = append(result, domain.MonthlyCount{Year: k.year, Month: k.month, Count: count})
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Year != result[b].Year {
			return result[a].Year > result[b].Year
		}
		return result[a].Month > result[b].Month
	})
	if len(result) > months {
		result = result[:months]
	}
	return result, nil
}
