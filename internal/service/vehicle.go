package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/logger"
	"carshare/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// VehicleCache keeps recently read catalogue entries. GetVehicle returns
// nil without error on a miss.
type VehicleCache interface {
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	SetVehicle(ctx context.Context, v *domain.Vehicle) error
	InvalidateVehicle(ctx context.Context, id string) error
}

// VehicleService manages the fleet catalogue.
type VehicleService struct {
	vehicles repository.VehicleRepository
	cache    VehicleCache
	now      func() time.Time
	log      *logrus.Entry
}

// NewVehicleService creates a new VehicleService. cache may be nil.
func NewVehicleService(vehicles repository.VehicleRepository, cache VehicleCache) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		cache:    cache,
		now:      time.Now,
		log:      logger.WithService("vehicle"),
	}
}

// VehicleRequest contains the editable fields of a vehicle.
type VehicleRequest struct {
	Brand    string
	Model    string
	Category string
	DailyFee decimal.Decimal
	// Units is only read on create. Afterwards units move through rentals alone.
	Units int
}

func (r VehicleRequest) validate(creating bool) (domain.VehicleCategory, error) {
	if strings.TrimSpace(r.Brand) == "" {
		return "", fmt.Errorf("%w: brand is required", ErrInvalidVehicle)
	}
	if strings.TrimSpace(r.Model) == "" {
		return "", fmt.Errorf("%w: model is required", ErrInvalidVehicle)
	}
	category, ok := domain.ParseVehicleCategory(r.Category)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidVehicle, r.Category)
	}
	if !r.DailyFee.IsPositive() {
		return "", fmt.Errorf("%w: daily fee must be positive", ErrInvalidVehicle)
	}
	if r.DailyFee.Exponent() < -2 {
		return "", fmt.Errorf("%w: daily fee has more than two decimals", ErrInvalidVehicle)
	}
	if creating && r.Units < 0 {
		return "", fmt.Errorf("%w: units must not be negative", ErrInvalidVehicle)
	}
	return category, nil
}

// List returns a page of vehicles that can be rented.
func (s *VehicleService) List(ctx context.Context, page, pageSize int) ([]*domain.Vehicle, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 0 {
		page = 0
	}
	return s.vehicles.List(ctx, pageSize, page*pageSize)
}

// Get returns a vehicle that has not been retired.
func (s *VehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, ErrVehicleNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.GetVehicle(ctx, id)
		if err != nil {
			s.log.WithError(err).Debug("vehicle cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetVehicle(ctx, v); err != nil {
			s.log.WithError(err).Debug("vehicle cache write failed")
		}
	}
	return v, nil
}

func (s *VehicleService) load(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, vehicleLookupError(err)
	}
	if v.Retired {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func (s *VehicleService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateVehicle(ctx, id); err != nil {
		s.log.WithError(err).WithField("vehicle_id", id).Warn("vehicle cache invalidation failed")
	}
}

// Create adds a vehicle to the fleet. Managers only.
func (s *VehicleService) Create(ctx context.Context, req VehicleRequest, requester domain.Requester) (*domain.Vehicle, error) {
	if !requester.IsAdmin() {
		return nil, ErrUnauthorized
	}
	category, err := req.validate(true)
	if err != nil {
		return nil, err
	}

	v := &domain.Vehicle{
		ID:             uuid.New().String(),
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		Category:       category,
		AvailableUnits: req.Units,
		DailyFee:       req.DailyFee.Round(2),
		CreatedAt:      s.now(),
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

// Update changes descriptive fields and the daily fee. Managers only.
func (s *VehicleService) Update(ctx context.Context, id string, req VehicleRequest, requester domain.Requester) (*domain.Vehicle, error) {
	if !requester.IsAdmin() {
		return nil, ErrUnauthorized
	}
	category, err := req.validate(false)
	if err != nil {
		return nil, err
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Brand = strings.TrimSpace(req.Brand)
	v.Model = strings.TrimSpace(req.Model)
	v.Category = category
	v.DailyFee = req.DailyFee.Round(2)

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, vehicleLookupError(err)
	}
	s.invalidate(ctx, id)
	return v, nil
}

// Retire hides a vehicle from the catalogue. Existing rentals keep referencing it.
func (s *VehicleService) Retire(ctx context.Context, id string, requester domain.Requester) error {
	if !requester.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.vehicles.Retire(ctx, id); err != nil {
		return vehicleLookupError(err)
	}
	s.invalidate(ctx, id)
	return nil
}

func vehicleLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVehicleNotFound
	}
	return fmt.Errorf("load vehicle: %w", err)
}
