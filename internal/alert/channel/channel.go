// Package channel implements the alert delivery routes. Each Sender is
// attempted independently by the dispatcher; a failure on one route never
// blocks the others.
package channel

import (
	"context"
	"errors"

	"talentgate/internal/alert/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/upstream"
)

// Sender delivers an alert over one channel.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, alert models.Alert) error
}

// deliveryError wraps a route failure as a DeliveryFailed domain error while
// keeping the upstream category reachable through errors.As.
func deliveryError(channel models.Channel, err error) error {
	var ue *upstream.Error
	if errors.As(err, &ue) {
		return dErrors.Wrap(err, dErrors.CodeDeliveryFailed, string(channel)+" delivery failed: "+string(ue.Category))
	}
	return dErrors.Wrap(err, dErrors.CodeDeliveryFailed, string(channel)+" delivery failed")
}
