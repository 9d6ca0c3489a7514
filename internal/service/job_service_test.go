package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/events"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func TestCreateJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "ada@example.com")

	job, err := f.jobSvc.CreateJob(ctx, owner, CreateJobInput{
		Company: " Acme ", Position: "Engineer", JobType: "remote", AppliedAt: "2024-03-01",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Company != "Acme" || job.Status != domain.JobStatusPending || job.JobType != domain.JobTypeRemote {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.CreatedBy != owner.UserID || job.JobLocation != domain.DefaultLocation {
		t.Fatalf("unexpected ownership or location %+v", job)
	}
	if job.AppliedAt == nil || !job.AppliedAt.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected appliedAt %v", job.AppliedAt)
	}

	tests := []struct {
		name string
		in   CreateJobInput
	}{
		{"missing company", CreateJobInput{Position: "Engineer"}},
		{"blank position", CreateJobInput{Company: "Acme", Position: "  "}},
		{"bad status", CreateJobInput{Company: "Acme", Position: "Engineer", Status: "hired"}},
		{"bad type", CreateJobInput{Company: "Acme", Position: "Engineer", JobType: "gig"}},
		{"bad date", CreateJobInput{Company: "Acme", Position: "Engineer", AppliedAt: "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.jobSvc.CreateJob(ctx, owner, tt.in)
			requireCode(t, err, apperrors.CodeValidation)
		})
	}

	_, err = f.jobSvc.CreateJob(ctx, domain.Identity{UserID: "ghost"}, CreateJobInput{Company: "Acme", Position: "Engineer"})
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestJobOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "ada@example.com")
	eve := f.register(t, "eve@example.com")

	job, err := f.jobSvc.CreateJob(ctx, ada, CreateJobInput{Company: "Acme", Position: "Engineer"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.jobSvc.GetJob(ctx, eve, job.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.jobSvc.UpdateJob(ctx, eve, job.ID, UpdateJobInput{Status: strPtr("declined")})
	requireCode(t, err, apperrors.CodeForbidden)

	requireCode(t, f.jobSvc.DeleteJob(ctx, eve, job.ID), apperrors.CodeForbidden)

	page, err := f.jobSvc.ListJobs(ctx, eve, JobListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalJobs != 0 || len(page.Jobs) != 0 {
		t.Fatalf("other user's jobs leaked: %+v", page)
	}

	if err := f.jobSvc.DeleteJob(ctx, ada, job.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	requireCode(t, f.jobSvc.DeleteJob(ctx, ada, job.ID), apperrors.CodeNotFound)
	_, err = f.jobSvc.GetJob(ctx, ada, "not-an-id")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "ada@example.com")

	var changes []events.JobUpdatedPayload
	f.dispatcher.Subscribe(events.EventJobUpdated, func(_ context.Context, e events.Event) error {
		changes = append(changes, e.Payload.(events.JobUpdatedPayload))
		return nil
	})

	job, err := f.jobSvc.CreateJob(ctx, owner, CreateJobInput{Company: "Acme", Position: "Engineer", AppliedAt: "2024-03-01"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := f.jobSvc.UpdateJob(ctx, owner, job.ID, UpdateJobInput{
		Status:    strPtr("interview"),
		AppliedAt: strPtr(""),
	})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if updated.Status != domain.JobStatusInterview || updated.Company != "Acme" || updated.AppliedAt != nil {
		t.Fatalf("unexpected update %+v", updated)
	}
	if len(changes) != 1 || changes[0].OldStatus != domain.JobStatusPending || changes[0].NewStatus != domain.JobStatusInterview {
		t.Fatalf("unexpected events %+v", changes)
	}

	_, err = f.jobSvc.UpdateJob(ctx, owner, job.ID, UpdateJobInput{Company: strPtr(" ")})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestListJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "ada@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created := 0
	f.jobs.SetClock(func() time.Time {
		created++
		return base.Add(time.Duration(created) * time.Hour)
	})

	inputs := []CreateJobInput{
		{Company: "Acme", Position: "Backend Engineer", Status: "pending"},
		{Company: "Globex", Position: "Analyst", Status: "interview", JobType: "part-time"},
		{Company: "Initech", Position: "Frontend Engineer", Status: "declined"},
	}
	for _, in := range inputs {
		if _, err := f.jobSvc.CreateJob(ctx, owner, in); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		q         JobListQuery
		wantTotal int64
		wantFirst string
		wantPages int
	}{
		{"defaults newest first", JobListQuery{}, 3, "Frontend Engineer", 1},
		{"all filters", JobListQuery{Status: "all", JobType: "all"}, 3, "Frontend Engineer", 1},
		{"oldest", JobListQuery{Sort: "oldest"}, 3, "Backend Engineer", 1},
		{"a-z", JobListQuery{Sort: "a-z"}, 3, "Analyst", 1},
		{"status", JobListQuery{Status: "interview"}, 1, "Analyst", 1},
		{"job type", JobListQuery{JobType: "part-time"}, 1, "Analyst", 1},
		{"search case insensitive", JobListQuery{Search: "ENGINEER", Sort: "z-a"}, 2, "Frontend Engineer", 1},
		{"search company", JobListQuery{Search: "glob"}, 1, "Analyst", 1},
		{"paged", JobListQuery{Limit: 2, Page: 2}, 3, "Backend Engineer", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.jobSvc.ListJobs(ctx, owner, tt.q)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			if page.TotalJobs != tt.wantTotal || page.NumOfPages != tt.wantPages {
				t.Fatalf("total=%d pages=%d", page.TotalJobs, page.NumOfPages)
			}
			if len(page.Jobs) == 0 || page.Jobs[0].Position != tt.wantFirst {
				t.Fatalf("unexpected first job in %+v", page.Jobs)
			}
		})
	}

	for _, q := range []JobListQuery{{Status: "hired"}, {JobType: "gig"}, {Sort: "random"}} {
		_, err := f.jobSvc.ListJobs(ctx, owner, q)
		requireCode(t, err, apperrors.CodeValidation)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "ada@example.com")

	months := []time.Time{
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	i := 0
	f.jobs.SetClock(func() time.Time {
		ts := months[i]
		i++
		return ts
	})
	for _, status := range []string{"pending", "interview", "interview"} {
		if _, err := f.jobSvc.CreateJob(ctx, owner, CreateJobInput{Company: "Acme", Position: "Engineer", Status: status}); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := f.jobSvc.Stats(ctx, owner)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.DefaultStats[domain.JobStatusPending] != 1 ||
		stats.DefaultStats[domain.JobStatusInterview] != 2 ||
		stats.DefaultStats[domain.JobStatusDeclined] != 0 {
		t.Fatalf("unexpected counts %v", stats.DefaultStats)
	}
	if _, ok := stats.DefaultStats[domain.JobStatusDeclined]; !ok {
		t.Fatal("zero statuses must be present")
	}
	if len(stats.MonthlyApplications) != 2 ||
		stats.MonthlyApplications[0] != (MonthlyApplications{Date: "Jan 2024", Count: 1}) ||
		stats.MonthlyApplications[1] != (MonthlyApplications{Date: "Mar 2024", Count: 2}) {
		t.Fatalf("unexpected monthly series %+v", stats.MonthlyApplications)
	}
}
