package tickets

import (
	"context"
	"fmt"

	"ticketing/internal/shared/apperrors"
	"ticketing/internal/shared/constants"
	"ticketing/pkg/cache"
	"ticketing/pkg/logger"
	"ticketing/pkg/money"

	"github.com/google/uuid"
)

type Service interface {
	// Inventory setup
	CreateTickets(ctx context.Context, req CreateTicketsRequest) (*CreateTicketsResponse, error)

	// Lookups
	GetTicket(ctx context.Context, id string) (*TicketResponse, error)
	FindAvailable(ctx context.Context, query AvailableTicketQuery) (*TicketResponse, error)
	GetEventSummary(ctx context.Context, eventID string) (*EventSummaryResponse, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	logger       *logger.Logger
}

// NewService wires the ticket service. cacheService may be nil, in which case
// summaries are always read from the store.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:         repo,
		cacheService: cacheService,
		logger:       logger.GetDefault().WithComponent("tickets"),
	}
}

// INVENTORY SETUP

func (s *service) CreateTickets(ctx context.Context, req CreateTicketsRequest) (*CreateTicketsResponse, error) {
	eventID, err := parseID("event", req.EventID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateBulk(ctx, eventID, req.Price, Type(req.Type), req.Quantity)
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, eventID)
	s.logger.LogTicketsCreated(ctx, eventID.String(), req.Type, len(created))

	ids := make([]string, len(created))
	for i, t := range created {
		ids[i] = t.ID.String()
	}

	return &CreateTicketsResponse{
		EventID:   eventID.String(),
		Type:      req.Type,
		Price:     req.Price,
		Currency:  created[0].Currency,
		Quantity:  len(created),
		TicketIDs: ids,
	}, nil
}

// LOOKUPS

func (s *service) GetTicket(ctx context.Context, id string) (*TicketResponse, error) {
	ticketID, err := parseID("ticket", id)
	if err != nil {
		return nil, err
	}

	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	resp := ticket.ToResponse()
	return &resp, nil
}

func (s *service) FindAvailable(ctx context.Context, query AvailableTicketQuery) (*TicketResponse, error) {
	eventID, err := parseID("event", query.EventID)
	if err != nil {
		return nil, err
	}
	price, err := money.ParseAmount(query.Price)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrInvalidInput)
	}
	ticketType := Type(query.Type)
	if !ticketType.IsValid() {
		return nil, fmt.Errorf("unknown ticket type %q: %w", query.Type, apperrors.ErrInvalidInput)
	}

	ticket, err := s.repo.FindAvailable(ctx, eventID, ticketType, price)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("no available %s ticket at %s: %w", ticketType, price, apperrors.ErrNotFound)
	}

	resp := ticket.ToResponse()
	return &resp, nil
}

func (s *service) GetEventSummary(ctx context.Context, eventID string) (*EventSummaryResponse, error) {
	id, err := parseID("event", eventID)
	if err != nil {
		return nil, err
	}

	fetch := func() (interface{}, error) {
		return s.repo.SummaryByEvent(ctx, id)
	}

	var tiers []Summary
	if s.cacheService == nil {
		tiers, err = s.repo.SummaryByEvent(ctx, id)
	} else {
		err = s.cacheService.GetOrSet(ctx, constants.BuildTicketSummaryKey(id.String()), constants.TTL_TICKET_SUMMARY, fetch, &tiers)
	}
	if err != nil {
		return nil, err
	}

	resp := &EventSummaryResponse{EventID: id.String(), Tiers: tiers}
	for _, tier := range tiers {
		resp.TotalAvailable += tier.Available
	}
	return resp, nil
}

func (s *service) invalidateSummary(ctx context.Context, eventID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildTicketSummaryKey(eventID.String())); err != nil {
		s.logger.Warn("Failed to invalidate ticket summary cache", "event_id", eventID.String(), "error", err)
	}
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q: %w", kind, raw, apperrors.ErrInvalidInput)
	}
	return id, nil
}
