// Package dispatch implements the two write operations of the dashboard:
// order creation and order assignment.
package dispatch

import (
	"context"
	"errors"
	"strings"

	logrus "github.com/sirupsen/logrus"

	"fleet-dispatch-api-server/internal/models"
	"fleet-dispatch-api-server/internal/store"
	"fleet-dispatch-api-server/internal/validate"
)

var (
	// ErrMissingRoute means origin or destination was empty.
	ErrMissingRoute = errors.New("origin and destination are required")
	// ErrOrderNotFound means the order vanished between render and click.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotPending means the order was already assigned or finalized.
	ErrOrderNotPending = errors.New("order is not pending")
	// ErrNoFreeDriver means no driver with status "libre" exists right now.
	ErrNoFreeDriver = errors.New("no free driver available")
	// ErrContention means every claim attempt lost its race. Practically
	// unreachable below maxClaimAttempts concurrent assigners.
	ErrContention = errors.New("assignment contention, try again")
)

// maxClaimAttempts bounds the reselect loop when claims keep losing races.
const maxClaimAttempts = 3

// Store is the slice of the data layer the service needs. Split out so
// tests can substitute a mock.
type Store interface {
	InsertOrder(ctx context.Context, order *models.Order) (string, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	FreeDrivers(ctx context.Context) ([]models.Driver, error)
	ClaimDriver(ctx context.Context, driverID, plate, project, orderID string) (bool, error)
	ReleaseDriver(ctx context.Context, driverID string) error
	MarkOrderAssigned(ctx context.Context, orderID, driverID string) (bool, error)
}

var _ Store = (*store.Store)(nil)

type Service struct {
	store  Store
	policy SelectionPolicy
}

func NewService(st Store, policy SelectionPolicy) *Service {
	if policy == nil {
		policy = FirstFree{}
	}
	return &Service{store: st, policy: policy}
}

// CreateOrderInput is the operator's raw form input.
type CreateOrderInput struct {
	Origin      string
	Destination string
	Priority    string
	Plate       string
	Project     string
}

// CreateOrder validates the input and inserts one pending order.
// Precondition order matters: route first, then plate, then project; the
// first failure wins and nothing is written.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	origin := strings.TrimSpace(in.Origin)
	destination := strings.TrimSpace(in.Destination)
	if origin == "" || destination == "" {
		return nil, ErrMissingRoute
	}

	plate, err := validate.NormalizePlate(in.Plate)
	if err != nil {
		return nil, err
	}
	project, err := validate.NormalizeProject(in.Project)
	if err != nil {
		return nil, err
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = models.DefaultPriority
	}

	order := &models.Order{
		Origin:      origin,
		Destination: destination,
		Priority:    priority,
		Plate:       plate,
		Project:     project,
	}

	if _, err := s.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// AssignOrder links one pending order to one free driver.
//
// The driver is claimed with a conditional update (status must still be
// "libre" at write time); a lost race just reselects among the remaining
// candidates. The order is then marked with the same kind of conditional
// update, and a claimed driver is released again if the order turns out to
// have been taken concurrently. Two concurrent assignments can therefore
// never end up holding the same driver.
func (s *Service) AssignOrder(ctx context.Context, orderID string) (*models.Driver, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.IsPending() {
		return nil, ErrOrderNotPending
	}

	tried := make(map[string]bool)

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		free, err := s.store.FreeDrivers(ctx)
		if err != nil {
			return nil, err
		}

		var candidates []models.Driver
		for _, d := range free {
			if !tried[d.ID.Hex()] {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) == 0 {
			return nil, ErrNoFreeDriver
		}

		driver := s.policy.Select(candidates)
		driverID := driver.ID.Hex()

		claimed, err := s.store.ClaimDriver(ctx, driverID, order.Plate, order.Project, orderID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Someone else took this driver between the query and the
			// update. Do not retry the same document.
			tried[driverID] = true
			logrus.WithFields(logrus.Fields{
				"order":  orderID,
				"driver": driverID,
			}).Debug("driver claim lost race, reselecting")
			continue
		}

		marked, err := s.store.MarkOrderAssigned(ctx, orderID, driverID)
		if err != nil {
			return nil, err
		}
		if !marked {
			// The order itself was assigned concurrently. Give the driver
			// back; the other assignment owns the order now.
			if relErr := s.store.ReleaseDriver(ctx, driverID); relErr != nil {
				logrus.WithError(relErr).WithField("driver", driverID).
					Error("failed to release driver after losing order race")
			}
			return nil, ErrOrderNotPending
		}

		driver.Status = models.DriverStatusBusy
		driver.CurrentPlate = order.Plate
		driver.CurrentProject = order.Project
		return &driver, nil
	}

	return nil, ErrContention
}
