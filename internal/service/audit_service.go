package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/job-tracker/internal/events"
)

// AuditService writes an activity log line for every domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handle)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.handle)
	a.dispatcher.Subscribe(events.EventJobCreated, a.handle)
	a.dispatcher.Subscribe(events.EventJobUpdated, a.handleJobUpdated)
	a.dispatcher.Subscribe(events.EventJobDeleted, a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor_id", event.ActorID),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleJobUpdated(ctx context.Context, event events.Event) error {
	if p, ok := event.Payload.(events.JobUpdatedPayload); ok && p.OldStatus != p.NewStatus {
		a.logger.Info("job_status_changed",
			zap.String("actor_id", event.ActorID),
			zap.String("subject_id", event.SubjectID),
			zap.String("from", string(p.OldStatus)),
			zap.String("to", string(p.NewStatus)))
	}
	return a.handle(ctx, event)
}
