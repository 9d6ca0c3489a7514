package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/events"
	"github.com/spec-kit/job-tracker/internal/repository"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	statsMonths     = 6
	filterAll       = "all"
)

// JobService coordinates job workflows for an authenticated owner.
type JobService struct {
	jobs       repository.JobRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// JobDependencies bundles repositories for the job service.
type JobDependencies struct {
	JobRepo    repository.JobRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// JobListQuery is the raw listing query. Empty values take defaults.
type JobListQuery struct {
	Status  string
	JobType string
	Search  string
	Sort    string
	Page    int
	Limit   int
}

// JobPage is one page of the caller's jobs.
type JobPage struct {
	Jobs       []domain.Job
	TotalJobs  int64
	NumOfPages int
	Page       int
}

// CreateJobInput describes job creation payload. AppliedAt is RFC3339 or YYYY-MM-DD.
type CreateJobInput struct {
	Company     string
	Position    string
	Status      string
	JobType     string
	JobLocation string
	AppliedAt   string
}

// UpdateJobInput carries a partial update; nil fields are left unchanged and an empty
// AppliedAt clears it.
type UpdateJobInput struct {
	Company     *string
	Position    *string
	Status      *string
	JobType     *string
	JobLocation *string
	AppliedAt   *string
}

// MonthlyApplications is one bar in the stats chart.
type MonthlyApplications struct {
	Date  string
	Count int64
}

// JobStats summarizes the caller's jobs.
type JobStats struct {
	DefaultStats        map[domain.JobStatus]int64
	MonthlyApplications []MonthlyApplications
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		jobs:       deps.JobRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListJobs returns a page of the caller's jobs.
func (s *JobService) ListJobs(ctx context.Context, identity domain.Identity, q JobListQuery) (*JobPage, error) {
	filter := repository.JobFilter{
		CreatedBy: identity.UserID,
		Search:    q.Search,
		Sort:      domain.JobSortLatest,
	}

	if q.Status != "" && q.Status != filterAll {
		status := domain.JobStatus(q.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": q.Status})
		}
		filter.Status = &status
	}
	if q.JobType != "" && q.JobType != filterAll {
		jobType := domain.JobType(q.JobType)
		if !jobType.Valid() {
			return nil, apperrors.NewValidationError("invalid jobType filter", map[string]any{"jobType": q.JobType})
		}
		filter.JobType = &jobType
	}
	if q.Sort != "" {
		sort := domain.JobSort(q.Sort)
		if !sort.Valid() {
			return nil, apperrors.NewValidationError("invalid sort", map[string]any{"sort": q.Sort})
		}
		filter.Sort = sort
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	jobs, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return &JobPage{
		Jobs:       jobs,
		TotalJobs:  total,
		NumOfPages: int((total + int64(limit) - 1) / int64(limit)),
		Page:       page,
	}, nil
}

// CreateJob validates and persists a job owned by the caller.
func (s *JobService) CreateJob(ctx context.Context, identity domain.Identity, in CreateJobInput) (*domain.Job, error) {
	job := &domain.Job{
		CreatedBy:   identity.UserID,
		Company:     strings.TrimSpace(in.Company),
		Position:    strings.TrimSpace(in.Position),
		Status:      domain.JobStatusPending,
		JobType:     domain.JobTypeFullTime,
		JobLocation: orDefault(in.JobLocation, domain.DefaultLocation),
	}
	if job.Company == "" || job.Position == "" {
		return nil, apperrors.NewValidationError("company and position required", nil)
	}
	if err := applyEnums(job, in.Status, in.JobType); err != nil {
		return nil, err
	}
	appliedAt, err := parseAppliedAt(in.AppliedAt)
	if err != nil {
		return nil, err
	}
	job.AppliedAt = appliedAt

	if _, err := s.users.GetByID(ctx, identity.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventJobCreated,
		ActorID:   identity.UserID,
		SubjectID: job.ID,
		Payload: events.JobCreatedPayload{
			Company:  job.Company,
			Position: job.Position,
			Status:   job.Status,
		},
	})
	return job, nil
}

// GetJob returns one of the caller's jobs.
func (s *JobService) GetJob(ctx context.Context, identity domain.Identity, jobID string) (*domain.Job, error) {
	return s.loadOwned(ctx, identity, jobID)
}

// UpdateJob applies a partial update to one of the caller's jobs.
func (s *JobService) UpdateJob(ctx context.Context, identity domain.Identity, jobID string, in UpdateJobInput) (*domain.Job, error) {
	job, err := s.loadOwned(ctx, identity, jobID)
	if err != nil {
		return nil, err
	}
	oldStatus := job.Status

	if in.Company != nil {
		if job.Company = strings.TrimSpace(*in.Company); job.Company == "" {
			return nil, apperrors.NewValidationError("company cannot be empty", nil)
		}
	}
	if in.Position != nil {
		if job.Position = strings.TrimSpace(*in.Position); job.Position == "" {
			return nil, apperrors.NewValidationError("position cannot be empty", nil)
		}
	}
	if in.JobLocation != nil {
		job.JobLocation = orDefault(*in.JobLocation, domain.DefaultLocation)
	}
	if err := applyEnums(job, deref(in.Status), deref(in.JobType)); err != nil {
		return nil, err
	}
	if in.AppliedAt != nil {
		appliedAt, err := parseAppliedAt(*in.AppliedAt)
		if err != nil {
			return nil, err
		}
		job.AppliedAt = appliedAt
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventJobUpdated,
		ActorID:   identity.UserID,
		SubjectID: job.ID,
		Payload:   events.JobUpdatedPayload{OldStatus: oldStatus, NewStatus: job.Status},
	})
	return job, nil
}

// DeleteJob removes one of the caller's jobs. Deleting a missing job is NotFound.
func (s *JobService) DeleteJob(ctx context.Context, identity domain.Identity, jobID string) error {
	if _, err := s.loadOwned(ctx, identity, jobID); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventJobDeleted,
		ActorID:   identity.UserID,
		SubjectID: jobID,
	})
	return nil
}

// Stats counts the caller's jobs per status and per month for recent months.
func (s *JobService) Stats(ctx context.Context, identity domain.Identity) (*JobStats, error) {
	counts, err := s.jobs.CountByStatus(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	defaults := make(map[domain.JobStatus]int64, len(domain.JobStatuses))
	for _, status := range domain.JobStatuses {
		defaults[status] = counts[status]
	}

	monthly, err := s.jobs.MonthlyApplications(ctx, identity.UserID, statsMonths)
	if err != nil {
		return nil, err
	}
	// repositories return newest first; the chart wants oldest first
	series := make([]MonthlyApplications, 0, len(monthly))
	for i := len(monthly) - 1; i >= 0; i-- {
		m := monthly[i]
		date := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
		series = append(series, MonthlyApplications{Date: date.Format("Jan 2006"), Count: m.Count})
	}

	return &JobStats{DefaultStats: defaults, MonthlyApplications: series}, nil
}

func (s *JobService) loadOwned(ctx context.Context, identity domain.Identity, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return nil, err
	}
	if !job.OwnedBy(identity.UserID) {
		return nil, apperrors.NewForbidden("not authorized to access this job")
	}
	return job, nil
}

func applyEnums(job *domain.Job, status, jobType string) error {
	if status != "" {
		st := domain.JobStatus(status)
		if !st.Valid() {
			return apperrors.NewValidationError(fmt.Sprintf("invalid status %q", status), map[string]any{"field": "status"})
		}
		job.Status = st
	}
	if jobType != "" {
		jt := domain.JobType(jobType)
		if !jt.Valid() {
			return apperrors.NewValidationError(fmt.Sprintf("invalid jobType %q", jobType), map[string]any{"field": "jobType"})
		}
		job.JobType = jt
	}
	return nil
}

func parseAppliedAt(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, apperrors.NewValidationError("appliedAt must be RFC3339 or YYYY-MM-DD", map[string]any{"field": "appliedAt"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
