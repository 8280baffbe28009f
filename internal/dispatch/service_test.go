package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet-dispatch-api-server/internal/models"
	"fleet-dispatch-api-server/internal/store"
	"fleet-dispatch-api-server/internal/validate"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) InsertOrder(ctx context.Context, order *models.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockStore) FreeDrivers(ctx context.Context) ([]models.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Driver), args.Error(1)
}

func (m *MockStore) ClaimDriver(ctx context.Context, driverID, plate, project, orderID string) (bool, error) {
	args := m.Called(ctx, driverID, plate, project, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ReleaseDriver(ctx context.Context, driverID string) error {
	args := m.Called(ctx, driverID)
	return args.Error(0)
}

func (m *MockStore) MarkOrderAssigned(ctx context.Context, orderID, driverID string) (bool, error) {
	args := m.Called(ctx, orderID, driverID)
	return args.Bool(0), args.Error(1)
}

func pendingOrder(id primitive.ObjectID) *models.Order {
	return &models.Order{
		ID:          id,
		Origin:      "Valdemoro",
		Destination: "Getafe",
		Priority:    "Normal",
		Plate:       "1234-ABC",
		Project:     "V429",
		Status:      models.OrderStatusPending,
		CreatedAt:   time.Now(),
	}
}

func freeDriver(name string) models.Driver {
	return models.Driver{
		ID:           primitive.NewObjectID(),
		Name:         name,
		TractorPlate: "9999-ZZZ",
		Status:       models.DriverStatusFree,
	}
}

func TestCreateOrder_EmptyOriginRejectedBeforeWrite(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Origin:      "   ",
		Destination: "Getafe",
	})

	assert.ErrorIs(t, err, ErrMissingRoute)
	st.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_InvalidPlateRejectedBeforeWrite(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Origin:      "Valdemoro",
		Destination: "Getafe",
		Plate:       "12-34-AB",
	})

	assert.ErrorIs(t, err, validate.ErrInvalidPlate)
	st.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_NormalizesAndDefaults(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	st.On("InsertOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Plate == "1234-ABC" && o.Project == "V429" && o.Priority == "Normal"
	})).Return(primitive.NewObjectID().Hex(), nil)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Origin:      "Valdemoro",
		Destination: "Getafe",
		Plate:       "1234abc",
		Project:     "v429",
	})

	assert.NoError(t, err)
	assert.Equal(t, "1234-ABC", order.Plate)
	st.AssertExpectations(t)
}

func TestAssignOrder_OrderNotFound(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	st.On("GetOrder", mock.Anything, "deadbeef").Return(nil, store.ErrNotFound)

	_, err := svc.AssignOrder(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	st.AssertNotCalled(t, "ClaimDriver", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignOrder_NoFreeDriver(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	orderID := primitive.NewObjectID()
	st.On("GetOrder", mock.Anything, orderID.Hex()).Return(pendingOrder(orderID), nil)
	st.On("FreeDrivers", mock.Anything).Return([]models.Driver{}, nil)

	_, err := svc.AssignOrder(context.Background(), orderID.Hex())
	assert.ErrorIs(t, err, ErrNoFreeDriver)
	st.AssertNotCalled(t, "ClaimDriver", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "MarkOrderAssigned", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignOrder_AlreadyAssigned(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	orderID := primitive.NewObjectID()
	order := pendingOrder(orderID)
	order.Status = models.OrderStatusAssigned
	st.On("GetOrder", mock.Anything, orderID.Hex()).Return(order, nil)

	_, err := svc.AssignOrder(context.Background(), orderID.Hex())
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestAssignOrder_HappyPath(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	orderID := primitive.NewObjectID()
	driver := freeDriver("Paco")

	st.On("GetOrder", mock.Anything, orderID.Hex()).Return(pendingOrder(orderID), nil)
	st.On("FreeDrivers", mock.Anything).Return([]models.Driver{driver}, nil)
	st.On("ClaimDriver", mock.Anything, driver.ID.Hex(), "1234-ABC", "V429", orderID.Hex()).Return(true, nil)
	st.On("MarkOrderAssigned", mock.Anything, orderID.Hex(), driver.ID.Hex()).Return(true, nil)

	got, err := svc.AssignOrder(context.Background(), orderID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, "Paco", got.Name)
	assert.Equal(t, models.DriverStatusBusy, got.Status)
	assert.Equal(t, "1234-ABC", got.CurrentPlate)
	assert.Equal(t, "V429", got.CurrentProject)
	st.AssertExpectations(t)
}

func TestAssignOrder_ReselectsAfterLostClaim(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	orderID := primitive.NewObjectID()
	first := freeDriver("Paco")
	second := freeDriver("Luisa")

	st.On("GetOrder", mock.Anything, orderID.Hex()).Return(pendingOrder(orderID), nil)
	st.On("FreeDrivers", mock.Anything).Return([]models.Driver{first, second}, nil)
	// First claim loses its race, second succeeds.
	st.On("ClaimDriver", mock.Anything, first.ID.Hex(), mock.Anything, mock.Anything, orderID.Hex()).Return(false, nil)
	st.On("ClaimDriver", mock.Anything, second.ID.Hex(), mock.Anything, mock.Anything, orderID.Hex()).Return(true, nil)
	st.On("MarkOrderAssigned", mock.Anything, orderID.Hex(), second.ID.Hex()).Return(true, nil)

	got, err := svc.AssignOrder(context.Background(), orderID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, "Luisa", got.Name)
	st.AssertExpectations(t)
}

func TestAssignOrder_ReleasesDriverWhenOrderRaceLost(t *testing.T) {
	st := new(MockStore)
	svc := NewService(st, nil)

	orderID := primitive.NewObjectID()
	driver := freeDriver("Paco")

	st.On("GetOrder", mock.Anything, orderID.Hex()).Return(pendingOrder(orderID), nil)
	st.On("FreeDrivers", mock.Anything).Return([]models.Driver{driver}, nil)
	st.On("ClaimDriver", mock.Anything, driver.ID.Hex(), mock.Anything, mock.Anything, orderID.Hex()).Return(true, nil)
	st.On("MarkOrderAssigned", mock.Anything, orderID.Hex(), driver.ID.Hex()).Return(false, nil)
	st.On("ReleaseDriver", mock.Anything, driver.ID.Hex()).Return(nil)

	_, err := svc.AssignOrder(context.Background(), orderID.Hex())

	assert.ErrorIs(t, err, ErrOrderNotPending)
	st.AssertExpectations(t)
}

// raceStore simulates the store's conditional updates with real mutexes so
// two concurrent assignments can be run against one free driver. Exactly one
// must win; the hardened claim makes double-booking impossible.
type raceStore struct {
	mu      sync.Mutex
	driver  models.Driver
	orders  map[string]*models.Order
	claimed bool
}

func (r *raceStore) InsertOrder(ctx context.Context, order *models.Order) (string, error) {
	panic("not used")
}

func (r *raceStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *raceStore) FreeDrivers(ctx context.Context) ([]models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed {
		return []models.Driver{}, nil
	}
	return []models.Driver{r.driver}, nil
}

func (r *raceStore) ClaimDriver(ctx context.Context, driverID, plate, project, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed {
		return false, nil
	}
	r.claimed = true
	return true, nil
}

func (r *raceStore) ReleaseDriver(ctx context.Context, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed = false
	return nil
}

func (r *raceStore) MarkOrderAssigned(ctx context.Context, orderID, driverID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.Status != models.OrderStatusPending {
		return false, nil
	}
	o.Status = models.OrderStatusAssigned
	return true, nil
}

func TestAssignOrder_TwoConcurrentAssignsOneFreeDriver(t *testing.T) {
	firstOrder := primitive.NewObjectID()
	secondOrder := primitive.NewObjectID()

	rs := &raceStore{
		driver: freeDriver("Paco"),
		orders: map[string]*models.Order{
			firstOrder.Hex():  pendingOrder(firstOrder),
			secondOrder.Hex(): pendingOrder(secondOrder),
		},
	}
	svc := NewService(rs, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{firstOrder.Hex(), secondOrder.Hex()} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.AssignOrder(context.Background(), id)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNoFreeDriver)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one assignment may hold the driver")
}
