package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ticketing/internal/shared/apperrors"
	"ticketing/internal/shared/constants"
	"ticketing/pkg/cache"
	"ticketing/pkg/money"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateBulk(ctx context.Context, eventID uuid.UUID, price money.Amount, ticketType Type, quantity int) ([]Ticket, error) {
	args := m.Called(ctx, eventID, price, ticketType, quantity)
	created, _ := args.Get(0).([]Ticket)
	return created, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	args := m.Called(ctx, id)
	ticket, _ := args.Get(0).(*Ticket)
	return ticket, args.Error(1)
}

func (m *MockRepository) FindAvailable(ctx context.Context, eventID uuid.UUID, ticketType Type, price money.Amount) (*Ticket, error) {
	args := m.Called(ctx, eventID, ticketType, price)
	ticket, _ := args.Get(0).(*Ticket)
	return ticket, args.Error(1)
}

func (m *MockRepository) SummaryByEvent(ctx context.Context, eventID uuid.UUID) ([]Summary, error) {
	args := m.Called(ctx, eventID)
	summary, _ := args.Get(0).([]Summary)
	return summary, args.Error(1)
}

func (m *MockRepository) TryReserve(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ticketID, buyerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) TrySettle(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Release(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ticketID, buyerID)
	return args.Bool(0), args.Error(1)
}

func setupTestService() (Service, *MockRepository, redismock.ClientMock) {
	client, redisMock := redismock.NewClientMock()
	repo := &MockRepository{}
	return NewService(repo, cache.NewService(client)), repo, redisMock
}

func TestService_CreateTickets(t *testing.T) {
	svc, repo, redisMock := setupTestService()
	ctx := context.Background()
	eventID := uuid.New()

	created := []Ticket{
		{ID: uuid.New(), EventID: eventID, Price: 5000, Currency: "usd", Type: TypeVIP, Status: StatusAvailable},
		{ID: uuid.New(), EventID: eventID, Price: 5000, Currency: "usd", Type: TypeVIP, Status: StatusAvailable},
	}
	repo.On("CreateBulk", ctx, eventID, money.FromCents(5000), TypeVIP, 2).Return(created, nil)
	redisMock.ExpectDel(constants.BuildTicketSummaryKey(eventID.String())).SetVal(1)

	resp, err := svc.CreateTickets(ctx, CreateTicketsRequest{
		EventID:  eventID.String(),
		Price:    money.FromCents(5000),
		Type:     "VIP",
		Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Quantity)
	assert.Equal(t, []string{created[0].ID.String(), created[1].ID.String()}, resp.TicketIDs)
	assert.Equal(t, "usd", resp.Currency)

	repo.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_CreateTickets_InvalidEvent(t *testing.T) {
	svc, repo, _ := setupTestService()

	_, err := svc.CreateTickets(context.Background(), CreateTicketsRequest{EventID: "nope", Price: 100, Type: "VIP", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateTickets_CacheFailureIgnored(t *testing.T) {
	svc, repo, redisMock := setupTestService()
	ctx := context.Background()
	eventID := uuid.New()

	repo.On("CreateBulk", ctx, eventID, money.FromCents(100), TypeStandard, 1).
		Return([]Ticket{{ID: uuid.New(), EventID: eventID, Price: 100, Currency: "usd", Type: TypeStandard}}, nil)
	redisMock.ExpectDel(constants.BuildTicketSummaryKey(eventID.String())).SetErr(errors.New("redis down"))

	resp, err := svc.CreateTickets(ctx, CreateTicketsRequest{EventID: eventID.String(), Price: 100, Type: "STANDARD", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Quantity)
}

func TestService_FindAvailable(t *testing.T) {
	svc, repo, _ := setupTestService()
	ctx := context.Background()
	eventID := uuid.New()
	ticket := &Ticket{ID: uuid.New(), EventID: eventID, Price: 5000, Currency: "usd", Type: TypeStandard, Status: StatusAvailable}

	repo.On("FindAvailable", ctx, eventID, TypeStandard, money.FromCents(5000)).Return(ticket, nil).Once()

	resp, err := svc.FindAvailable(ctx, AvailableTicketQuery{EventID: eventID.String(), Price: "50.00", Type: "STANDARD"})
	require.NoError(t, err)
	assert.Equal(t, ticket.ID.String(), resp.ID)
	assert.Equal(t, StatusAvailable, resp.Status)

	t.Run("sold out", func(t *testing.T) {
		repo.On("FindAvailable", ctx, eventID, TypeVIP, money.FromCents(9950)).Return(nil, nil).Once()

		_, err := svc.FindAvailable(ctx, AvailableTicketQuery{EventID: eventID.String(), Price: "99.5", Type: "VIP"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("sub-cent price", func(t *testing.T) {
		_, err := svc.FindAvailable(ctx, AvailableTicketQuery{EventID: eventID.String(), Price: "10.005", Type: "VIP"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestService_GetTicket_NotFound(t *testing.T) {
	svc, repo, _ := setupTestService()
	ctx := context.Background()
	id := uuid.New()

	repo.On("GetByID", ctx, id).Return(nil, ErrTicketNotFound)

	_, err := svc.GetTicket(ctx, id.String())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_GetEventSummary_CacheMiss(t *testing.T) {
	svc, repo, redisMock := setupTestService()
	ctx := context.Background()
	eventID := uuid.New()
	key := constants.BuildTicketSummaryKey(eventID.String())

	tiers := []Summary{
		{Type: TypeStandard, Price: 5000, Available: 7, Sold: 3},
		{Type: TypeVIP, Price: 20000, Available: 1, Reserved: 1},
	}
	payload, err := json.Marshal(tiers)
	require.NoError(t, err)

	redisMock.ExpectGet(key).RedisNil()
	repo.On("SummaryByEvent", ctx, eventID).Return(tiers, nil).Once()
	redisMock.ExpectSet(key, payload, constants.TTL_TICKET_SUMMARY).SetVal("OK")

	resp, err := svc.GetEventSummary(ctx, eventID.String())
	require.NoError(t, err)
	assert.Equal(t, tiers, resp.Tiers)
	assert.Equal(t, int64(8), resp.TotalAvailable)

	repo.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_GetEventSummary_CacheHit(t *testing.T) {
	svc, repo, redisMock := setupTestService()
	ctx := context.Background()
	eventID := uuid.New()

	tiers := []Summary{{Type: TypeVIP, Price: 20000, Available: 4}}
	payload, err := json.Marshal(tiers)
	require.NoError(t, err)
	redisMock.ExpectGet(constants.BuildTicketSummaryKey(eventID.String())).SetVal(string(payload))

	resp, err := svc.GetEventSummary(ctx, eventID.String())
	require.NoError(t, err)
	assert.Equal(t, tiers, resp.Tiers)
	assert.Equal(t, int64(4), resp.TotalAvailable)

	repo.AssertNotCalled(t, "SummaryByEvent", mock.Anything, mock.Anything)
}

func TestService_GetEventSummary_WithoutCache(t *testing.T) {
	repo := &MockRepository{}
	svc := NewService(repo, nil)
	ctx := context.Background()
	eventID := uuid.New()

	repo.On("SummaryByEvent", ctx, eventID).Return([]Summary{{Type: TypeStandard, Price: 100, Available: 2}}, nil)

	resp, err := svc.GetEventSummary(ctx, eventID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalAvailable)
}
