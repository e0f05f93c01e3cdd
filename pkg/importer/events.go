package importer

import (
	"context"
	"errors"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/common/models"
	"github.com/aplose/erp-migrate/pkg/importrun"
	"github.com/google/uuid"
)

const eventSource = "erp-migrate"

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, source, key string, data map[string]interface{}) error
}

// EventNotifier announces run start and finish on the event topic. Publish
// failures are logged and never affect the run.
type EventNotifier struct {
	publisher EventPublisher
}

func NewEventNotifier(publisher EventPublisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

func (n *EventNotifier) RunStarted(ctx context.Context, run *importrun.Run) {
	n.publish(ctx, models.EventImportStarted, run)
}

func (n *EventNotifier) RunFinished(ctx context.Context, run *importrun.Run) {
	n.publish(ctx, models.EventImportFinished, run)
}

func (n *EventNotifier) publish(ctx context.Context, eventType string, run *importrun.Run) {
	data := map[string]interface{}{
		"run_id":     run.ID.String(),
		"tenant_id":  run.TenantID,
		"status":     run.Status,
		"base_url":   run.BaseURL,
		"started_at": run.StartedAt,
	}
	if run.FinishedAt != nil {
		data["finished_at"] = *run.FinishedAt
	}
	if err := n.publisher.PublishEvent(ctx, eventType, eventSource, run.TenantID, data); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"run_id":     run.ID,
			"event_type": eventType,
		}).Warn("failed to publish import event")
	}
}

// EventQueue hands import requests to the worker through the request topic.
type EventQueue struct {
	publisher EventPublisher
}

func NewEventQueue(publisher EventPublisher) *EventQueue {
	return &EventQueue{publisher: publisher}
}

// Enqueue publishes req. Queued requests carry a config id, never a key.
func (q *EventQueue) Enqueue(ctx context.Context, req models.ImportRequest) error {
	return q.publisher.PublishEvent(ctx, models.EventImportRequested, eventSource, req.TenantID, req.ToEventData())
}

// HandleEvent runs the import described by an import.requested event.
// Other event types are ignored.
func (o *Orchestrator) HandleEvent(ctx context.Context, event models.Event) error {
	if event.Type != models.EventImportRequested {
		return nil
	}
	msg := models.ImportRequestFromEvent(event)

	req := Request{TenantID: msg.TenantID, InitiatedBy: msg.InitiatedBy}
	if msg.ConfigID != "" {
		id, err := uuid.Parse(msg.ConfigID)
		if err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Warn("dropping import request with invalid config id")
			return nil
		}
		req.ConfigID = &id
	}

	run, err := o.Run(ctx, req)
	if err != nil {
		// Requests that can never succeed are dropped; the rest are retried.
		if errors.Is(err, ErrTenantRequired) || errors.Is(err, ErrMissingSource) || errors.Is(err, ErrRunInProgress) {
			logger.Log.WithError(err).WithField("event_id", event.ID).Warn("dropping import request")
			return nil
		}
		return err
	}
	logger.Log.WithFields(map[string]interface{}{
		"event_id": event.ID,
		"run_id":   run.ID,
		"status":   run.Status,
	}).Info("queued import finished")
	return nil
}
