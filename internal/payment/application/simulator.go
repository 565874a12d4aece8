package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/order-fulfillment-console/internal/payment/domain"
)

type Simulator struct {
	log *slog.Logger
}

func NewSimulator(log *slog.Logger) *Simulator {
	return &Simulator{log: log}
}

// Authorize decides a payment. COD is always approved, MockCard defers to the
// approver (auto-decline without one), and anything else is declined.
func (s *Simulator) Authorize(ctx context.Context, orderID, mode string, amount int64, approver Approver) domain.Decision {
	m, known := domain.ParseMode(mode)
	if !known {
		reason := "Unknown payment mode: " + string(m)
		return s.decline(orderID, reason, "PAYMENT FAIL ("+reason+")")
	}

	switch m {
	case domain.ModeCOD:
		return s.approve(orderID, "PAYMENT OK (Cash on Delivery)")
	case domain.ModeMockCard:
		if approver == nil {
			return s.decline(orderID, "no approval channel", "PAYMENT FAIL (Auto decline: no approval channel)")
		}
		ok, err := approver.Approve(ctx, domain.Request{OrderID: orderID, Mode: m, Amount: amount})
		if err != nil {
			s.log.Warn("payment approval failed", "order_id", orderID, "err", err)
			return s.decline(orderID, "approval unavailable", "PAYMENT FAIL (MockCard approval unavailable)")
		}
		if !ok {
			return s.decline(orderID, "declined by operator", "PAYMENT FAIL (MockCard declined)")
		}
		return s.approve(orderID, "PAYMENT OK (MockCard approved)")
	}
	return s.decline(orderID, "unsupported payment mode", "PAYMENT FAIL (unsupported payment mode)")
}

func (s *Simulator) approve(orderID, msg string) domain.Decision {
	s.log.Info("payment approved", "order_id", orderID)
	return domain.Decision{Status: domain.StatusApproved, LogMessage: msg}
}

func (s *Simulator) decline(orderID, reason, msg string) domain.Decision {
	s.log.Info("payment declined", "order_id", orderID, "reason", reason)
	return domain.Decision{Status: domain.StatusDeclined, Reason: reason, LogMessage: msg}
}
