package domain

import "errors"

// Gate errors. These are expected outcomes of TryEnter/TryExit, not faults.
var (
	ErrNoCapacity        = errors.New("no parking spaces available")
	ErrInvalidGate       = errors.New("gate index out of range")
	ErrTicketMismatch    = errors.New("ticket does not belong to this vehicle")
	ErrTicketAlreadyUsed = errors.New("ticket already used")
	ErrInvalidVehicle    = errors.New("invalid vehicle info")
	ErrAlreadyParked     = errors.New("vehicle is already parked")
)

var (
	ErrInvalidTariff  = errors.New("invalid tariff")
	ErrInvalidConfig  = errors.New("invalid facility configuration")
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrHistoryUnavailable is returned by history queries when no database is configured.
	ErrHistoryUnavailable = errors.New("session history is not persisted")
)
