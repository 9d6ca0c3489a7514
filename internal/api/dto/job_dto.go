package dto

import (
	"time"

	"github.com/spec-kit/job-tracker/internal/domain"
)

// CreateJobRequest payload.
type CreateJobRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Status      string `json:"status"`
	JobType     string `json:"jobType"`
	JobLocation string `json:"jobLocation"`
	AppliedAt   string `json:"appliedAt"`
}

// UpdateJobRequest payload; absent fields are left unchanged.
type UpdateJobRequest struct {
	Company     *string `json:"company"`
	Position    *string `json:"position"`
	Status      *string `json:"status"`
	JobType     *string `json:"jobType"`
	JobLocation *string `json:"jobLocation"`
	AppliedAt   *string `json:"appliedAt"`
}

// JobResponse is the wire form of a job.
type JobResponse struct {
	ID          string           `json:"id"`
	Company     string           `json:"company"`
	Position    string           `json:"position"`
	Status      domain.JobStatus `json:"status"`
	JobType     domain.JobType   `json:"jobType"`
	JobLocation string           `json:"jobLocation"`
	AppliedAt   *time.Time       `json:"appliedAt,omitempty"`
	CreatedBy   string           `json:"createdBy"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// JobListResponse is one page of jobs.
type JobListResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	TotalJobs  int64         `json:"totalJobs"`
	NumOfPages int           `json:"numOfPages"`
	Page       int           `json:"page"`
}

// MonthlyApplicationsResponse is one month of the stats series.
type MonthlyApplicationsResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// StatsResponse summarizes a user's jobs.
type StatsResponse struct {
	DefaultStats        map[domain.JobStatus]int64    `json:"defaultStats"`
	MonthlyApplications []MonthlyApplicationsResponse `json:"monthlyApplications"`
}

// NewJobResponse maps a domain job.
func NewJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Company:     j.Company,
		Position:    j.Position,
		Status:      j.Status,
		JobType:     j.JobType,
		JobLocation: j.JobLocation,
		AppliedAt:   j.AppliedAt,
		CreatedBy:   j.CreatedBy,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
