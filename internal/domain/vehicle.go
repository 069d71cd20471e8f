package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VehicleCategory represents the body type of a vehicle.
type VehicleCategory string

const (
	VehicleCategorySedan     VehicleCategory = "SEDAN"
	VehicleCategorySUV       VehicleCategory = "SUV"
	VehicleCategoryHatchback VehicleCategory = "HATCHBACK"
	VehicleCategoryUniversal VehicleCategory = "UNIVERSAL"
)

// ParseVehicleCategory parses a category name case-insensitively.
func ParseVehicleCategory(s string) (VehicleCategory, bool) {
	switch c := VehicleCategory(strings.ToUpper(strings.TrimSpace(s))); c {
	case VehicleCategorySedan, VehicleCategorySUV, VehicleCategoryHatchback, VehicleCategoryUniversal:
		return c, true
	default:
		return "", false
	}
}

// Vehicle represents a fleet entry with a pool of interchangeable units.
type Vehicle struct {
	ID             string
	Brand          string
	Model          string
	Category       VehicleCategory
	AvailableUnits int
	DailyFee       decimal.Decimal
	Retired        bool
	CreatedAt      time.Time
}
