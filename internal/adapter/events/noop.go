package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// LogPublisher stands in for a broker when none is configured; events are logged at debug level
type LogPublisher struct {
	Logger logrus.FieldLogger
}

// PublishTransferCompleted implements domain.EventPublisher
func (p LogPublisher) PublishTransferCompleted(_ context.Context, event domain.TransferCompleted) error {
	p.Logger.WithFields(logrus.Fields{
		"transfer_id": event.TransferID,
		"amount":      event.Amount,
		"mode":        event.Mode,
	}).Debug("transfer completed event")
	return nil
}

var _ domain.EventPublisher = LogPublisher{}
