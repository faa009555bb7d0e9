package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"talentgate/internal/platform/kafka/consumer"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

// AssessmentHandler processes assessment events from Kafka. Malformed events
// and assessments that no longer exist are logged and acknowledged; other
// failures are returned so the record is redelivered.
func AssessmentHandler(p *Pipeline, logger *slog.Logger) consumer.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return consumer.HandlerFunc(func(ctx context.Context, msg *consumer.Message) error {
		var event AssessmentEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.AssessmentID == "" {
			logger.WarnContext(ctx, "dropping malformed assessment event",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
			return nil
		}
		if event.ActorID == "" {
			event.ActorID = "system:assessments"
		}
		ctx = requestcontext.WithActorID(ctx, event.ActorID)
		if id := msg.Headers["request_id"]; id != "" {
			ctx = requestcontext.WithRequestID(ctx, id)
		}

		outcome, err := p.ProcessAssessment(ctx, event.ActorID, event.AssessmentID)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "assessment processed",
				"assessment_id", outcome.AssessmentID,
				"access", outcome.Access,
				"alerts", len(outcome.Alerts),
			)
			return nil
		case dErrors.HasCode(err, dErrors.CodeNotFound), dErrors.HasCode(err, dErrors.CodeValidation), dErrors.HasCode(err, dErrors.CodeBadRequest):
			logger.WarnContext(ctx, "assessment event rejected",
				"assessment_id", event.AssessmentID,
				"error", err,
			)
			return nil
		default:
			return err
		}
	})
}
