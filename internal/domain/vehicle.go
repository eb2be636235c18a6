package domain

import "fmt"

type VehicleClass string

const (
	ClassMotorcycle VehicleClass = "motorcycle" // motorcycles, scooters
	ClassCompact    VehicleClass = "compact"    // sedans, hatchbacks
	ClassOversized  VehicleClass = "oversized"  // trucks, buses
)

func (c VehicleClass) Valid() bool {
	switch c {
	case ClassMotorcycle, ClassCompact, ClassOversized:
		return true
	}
	return false
}

// VehicleInfo is captured by value into every log entry, so later changes by
// the caller never alter what was recorded.
type VehicleInfo struct {
	ID      string       `json:"id" binding:"required"` // plate, e.g. "A001AA"
	Class   VehicleClass `json:"class" binding:"omitempty,oneof=motorcycle compact oversized"`
	OwnerID string       `json:"owner_id,omitempty"`
}

func (v VehicleInfo) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("%w: empty vehicle identifier", ErrInvalidVehicle)
	}
	if v.Class != "" && !v.Class.Valid() {
		return fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidVehicle, v.Class)
	}
	return nil
}
