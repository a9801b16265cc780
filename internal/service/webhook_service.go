package service

import (
	"context"
	"time"

	"payment-core/internal/core/domain"
	"payment-core/internal/core/ports"
	"payment-core/pkg/apperror"

	"github.com/rs/zerolog"
)

// Duplicate webhook deliveries arrive within minutes; a day of dedupe
// history is ample.
const dedupeTTL = 24 * time.Hour

// WebhookServiceImpl implements ports.WebhookService: the single trust
// boundary where unauthenticated network input becomes an authenticated
// order-state transition.
type WebhookServiceImpl struct {
	factory   ports.ProviderFactory
	orderRepo ports.OrderRepository
	dedupe    ports.EventDedupeCache
	log       zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl. dedupe may be nil to
// disable the Redis fast path; the conditional order update remains the
// authoritative duplicate guard.
func NewWebhookService(factory ports.ProviderFactory, orderRepo ports.OrderRepository, dedupe ports.EventDedupeCache, log zerolog.Logger) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		factory:   factory,
		orderRepo: orderRepo,
		dedupe:    dedupe,
		log:       log,
	}
}

// HandleWebhook verifies a raw gateway callback and, for a successful
// payment, transitions the matching order to paid exactly once. Non-success
// events and duplicate deliveries are acknowledged without any write.
func (s *WebhookServiceImpl) HandleWebhook(ctx context.Context, providerName string, rawBody []byte, signature string) error {
	adapter := s.factory.ByName(providerName)

	event, err := adapter.VerifyWebhook(rawBody, signature)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("provider", adapter.Name()).
			Msg("webhook verification failed")
		return err
	}

	if event.Type != domain.EventPaymentSuccess {
		s.log.Debug().
			Str("provider", adapter.Name()).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("ignoring non-success webhook event")
		return nil
	}

	// The dedupe entry is recorded before the order update. Every failure
	// path past this point must clear it again: the gateway retries on error,
	// and a stale entry would make the retry look like a duplicate and lose
	// the payment until the TTL expires.
	recorded := false
	if s.dedupe != nil {
		first, err := s.dedupe.FirstSeen(ctx, adapter.Name(), event.ID, dedupeTTL)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("event dedupe check failed, falling through to conditional update")
		} else if !first {
			s.log.Info().
				Str("provider", adapter.Name()).
				Str("event_id", event.ID).
				Msg("duplicate webhook delivery, skipping")
			return nil
		} else {
			recorded = true
		}
	}

	updated, err := s.orderRepo.MarkPaid(ctx, event.ID)
	if err != nil {
		s.forgetEvent(ctx, recorded, adapter.Name(), event.ID)
		s.log.Error().Err(err).Str("event_id", event.ID).Msg("failed to update order status")
		return apperror.ErrDatabaseError(err)
	}
	if updated {
		s.log.Info().
			Str("provider", adapter.Name()).
			Str("event_id", event.ID).
			Msg("order marked as paid")
		return nil
	}

	// Zero rows updated: either the order is already settled (idempotent
	// no-op) or it does not exist.
	order, err := s.orderRepo.GetByGatewayLinkID(ctx, event.ID)
	if err != nil {
		s.forgetEvent(ctx, recorded, adapter.Name(), event.ID)
		return apperror.ErrDatabaseError(err)
	}
	if order == nil {
		s.forgetEvent(ctx, recorded, adapter.Name(), event.ID)
		s.log.Warn().
			Str("provider", adapter.Name()).
			Str("event_id", event.ID).
			Msg("webhook references unknown order")
		return apperror.ErrOrderNotFound()
	}

	s.log.Info().
		Str("provider", adapter.Name()).
		Str("event_id", event.ID).
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Msg("order already settled, idempotent no-op")
	return nil
}

// forgetEvent clears a dedupe entry recorded earlier in the same delivery.
// Best effort: a failed delete is logged and the entry ages out with the TTL.
func (s *WebhookServiceImpl) forgetEvent(ctx context.Context, recorded bool, provider, eventID string) {
	if !recorded {
		return
	}
	if err := s.dedupe.Forget(ctx, provider, eventID); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("failed to clear event dedupe entry")
	}
}
