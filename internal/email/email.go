package email

import (
	"context"

	"github.com/Domenick1991/bookingflow/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender turns consumed flow events into customer notifications. Delivery is
// stubbed to the log; a real mailer plugs in behind the same method.
type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.FlowEvent) error {
	s.log.WithFields(logrus.Fields{
		"type":         event.Type,
		"session_id":   event.SessionID,
		"booking_code": event.BookingCode,
		"status":       event.Status,
	}).Info("sending booking notification")
	return nil
}
