package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"carshare/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleCacheTTL bounds how stale a cached catalogue entry may get.
// Unit counts move with every rental so this stays short.
const VehicleCacheTTL = 5 * time.Second

const vehicleCachePrefix = "cache:vehicle:"

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID             string          `json:"id"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Category       string          `json:"category"`
	AvailableUnits int             `json:"available_units"`
	DailyFee       decimal.Decimal `json:"daily_fee"`
	CreatedAt      time.Time       `json:"created_at"`
}

// GetVehicle retrieves a vehicle from cache. Returns nil on a miss.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	data, err := s.client.Get(ctx, vehicleCachePrefix+vehicleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedVehicle
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.Vehicle{
		ID:             cached.ID,
		Brand:          cached.Brand,
		Model:          cached.Model,
		Category:       domain.VehicleCategory(cached.Category),
		AvailableUnits: cached.AvailableUnits,
		DailyFee:       cached.DailyFee,
		CreatedAt:      cached.CreatedAt,
	}, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, v *domain.Vehicle) error {
	data, err := json.Marshal(CachedVehicle{
		ID:             v.ID,
		Brand:          v.Brand,
		Model:          v.Model,
		Category:       string(v.Category),
		AvailableUnits: v.AvailableUnits,
		DailyFee:       v.DailyFee,
		CreatedAt:      v.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, vehicleCachePrefix+v.ID, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle from cache.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	return s.client.Del(ctx, vehicleCachePrefix+vehicleID).Err()
}
