package tickets

import (
	"context"

	"ticketing/internal/shared/constants"
	"ticketing/pkg/cache"
	"ticketing/pkg/logger"

	"github.com/google/uuid"
)

// invalidatingRepository drops the cached event summary whenever a status
// transition succeeds, so availability reads stay close to the store.
type invalidatingRepository struct {
	Repository
	cacheService cache.Service
	logger       *logger.Logger
}

// NewInvalidatingRepository wraps repo for callers that move tickets between
// states. Cache failures are logged and never fail the transition.
func NewInvalidatingRepository(repo Repository, cacheService cache.Service) Repository {
	if cacheService == nil {
		return repo
	}
	return &invalidatingRepository{
		Repository:   repo,
		cacheService: cacheService,
		logger:       logger.GetDefault().WithComponent("ticket-cache"),
	}
}

func (r *invalidatingRepository) TryReserve(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error) {
	changed, err := r.Repository.TryReserve(ctx, ticketID, buyerID)
	if changed {
		r.invalidate(ctx, ticketID)
	}
	return changed, err
}

func (r *invalidatingRepository) TrySettle(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	changed, err := r.Repository.TrySettle(ctx, ticketID)
	if changed {
		r.invalidate(ctx, ticketID)
	}
	return changed, err
}

func (r *invalidatingRepository) Release(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error) {
	changed, err := r.Repository.Release(ctx, ticketID, buyerID)
	if changed {
		r.invalidate(ctx, ticketID)
	}
	return changed, err
}

func (r *invalidatingRepository) invalidate(ctx context.Context, ticketID uuid.UUID) {
	ticket, err := r.Repository.GetByID(ctx, ticketID)
	if err != nil {
		r.logger.Warn("Ticket lookup for cache invalidation failed", "ticket_id", ticketID.String(), "error", err)
		return
	}
	if err := r.cacheService.Delete(ctx, constants.BuildTicketSummaryKey(ticket.EventID.String())); err != nil {
		r.logger.Warn("Failed to invalidate ticket summary cache", "event_id", ticket.EventID.String(), "error", err)
	}
}
