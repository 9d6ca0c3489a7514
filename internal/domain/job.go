package domain

import "time"

// JobStatus enumerates application outcomes.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusInterview JobStatus = "interview"
	JobStatusDeclined  JobStatus = "declined"
)

// JobStatuses lists every status in display order.
var JobStatuses = []JobStatus{JobStatusPending, JobStatusInterview, JobStatusDeclined}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInterview, JobStatusDeclined:
		return true
	}
	return false
}

// JobType enumerates employment types.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeRemote     JobType = "remote"
	JobTypeInternship JobType = "internship"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeRemote, JobTypeInternship:
		return true
	}
	return false
}

// JobSort enumerates list orderings.
type JobSort string

const (
	JobSortLatest JobSort = "latest"
	JobSortOldest JobSort = "oldest"
	JobSortAZ     JobSort = "a-z"
	JobSortZA     JobSort = "z-a"
)

// Valid reports whether s is a known ordering.
func (s JobSort) Valid() bool {
	switch s {
	case JobSortLatest, JobSortOldest, JobSortAZ, JobSortZA:
		return true
	}
	return false
}

// Job is a single tracked application.
type Job struct {
	ID          string
	CreatedBy   string
	Company     string
	Position    string
	Status      JobStatus
	JobType     JobType
	JobLocation string
	AppliedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID owns the job.
func (j *Job) OwnedBy(userID string) bool {
	return j.CreatedBy == userID
}

// MonthlyCount is the number of applications created in one calendar month.
type MonthlyCount struct {
	Year  int
	Month time.Month
	Count int64
}
