package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-tracker/internal/api/dto"
	"github.com/spec-kit/job-tracker/internal/domain"
	"github.com/spec-kit/job-tracker/internal/service"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

// JobsHandler manages the caller's job applications.
type JobsHandler struct {
	service *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{service: jobService}
}

// ListJobs GET /api/v1/jobs.
func (h *JobsHandler) ListJobs(c *fiber.Ctx, identity domain.Identity) error {
	page, err := h.service.ListJobs(c.UserContext(), identity, parseJobListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.JobResponse, 0, len(page.Jobs))
	for i := range page.Jobs {
		items = append(items, dto.NewJobResponse(&page.Jobs[i]))
	}
	return c.JSON(dto.JobListResponse{
		Jobs:       items,
		TotalJobs:  page.TotalJobs,
		NumOfPages: page.NumOfPages,
		Page:       page.Page,
	})
}

// Stats GET /api/v1/jobs/stats.
func (h *JobsHandler) Stats(c *fiber.Ctx, identity domain.Identity) error {
	stats, err := h.service.Stats(c.UserContext(), identity)
	if err != nil {
		return err
	}
	monthly := make([]dto.MonthlyApplicationsResponse, 0, len(stats.MonthlyApplications))
	for _, m := range stats.MonthlyApplications {
		monthly = append(monthly, dto.MonthlyApplicationsResponse{Date: m.Date, Count: m.Count})
	}
	return c.JSON(dto.StatsResponse{DefaultStats: stats.DefaultStats, MonthlyApplications: monthly})
}

// CreateJob POST /api/v1/jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx, identity domain.Identity) error {
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.CreateJob(c.UserContext(), identity, service.CreateJobInput{
		Company:     req.Company,
		Position:    req.Position,
		Status:      req.Status,
		JobType:     req.JobType,
		JobLocation: req.JobLocation,
		AppliedAt:   req.AppliedAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"job": dto.NewJobResponse(job)})
}

// GetJob GET /api/v1/jobs/:id.
func (h *JobsHandler) GetJob(c *fiber.Ctx, identity domain.Identity) error {
	job, err := h.service.GetJob(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"job": dto.NewJobResponse(job)})
}

// UpdateJob PATCH /api/v1/jobs/:id.
func (h *JobsHandler) UpdateJob(c *fiber.Ctx, identity domain.Identity) error {
	var req dto.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.UpdateJob(c.UserContext(), identity, c.Params("id"), service.UpdateJobInput{
		Company:     req.Company,
		Position:    req.Position,
		Status:      req.Status,
		JobType:     req.JobType,
		JobLocation: req.JobLocation,
		AppliedAt:   req.AppliedAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"job": dto.NewJobResponse(job)})
}

// DeleteJob DELETE /api/v1/jobs/:id.
func (h *JobsHandler) DeleteJob(c *fiber.Ctx, identity domain.Identity) error {
	if err := h.service.DeleteJob(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func parseJobListQuery(c *fiber.Ctx) service.JobListQuery {
	return service.JobListQuery{
		Status:  c.Query("status"),
		JobType: c.Query("jobType"),
		Search:  c.Query("search"),
		Sort:    c.Query("sort"),
		Page:    parseInt(c.Query("page"), 1),
		Limit:   parseInt(c.Query("limit"), 10),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
