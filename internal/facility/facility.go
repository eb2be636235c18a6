package facility

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenvvay/Parking/internal/domain"
)

// Observer is told about every accepted passage. It runs on the goroutine
// that called TryEnter/TryExit, after all facility locks are released.
type Observer interface {
	Observe(entry domain.LogEntry, available int)
}

type ObserverFunc func(entry domain.LogEntry, available int)

func (f ObserverFunc) Observe(entry domain.LogEntry, available int) { f(entry, available) }

type Option func(*Facility)

func WithClock(c Clock) Option {
	return func(f *Facility) {
		if c != nil {
			f.clock = c
		}
	}
}

func WithObserver(o Observer) Option {
	return func(f *Facility) {
		if o != nil {
			f.observers = append(f.observers, o)
		}
	}
}

func WithID(id uuid.UUID) Option {
	return func(f *Facility) { f.id = id }
}

// Facility is one parking lot: a fixed pool of spaces behind numbered entry
// and exit gates, a replaceable tariff and a log of every accepted passage.
// All methods are safe for concurrent use.
type Facility struct {
	id        uuid.UUID
	inGates   int
	outGates  int
	clock     Clock
	observers []Observer

	// mu guards reg. Log appends for enter/exit happen while it is held.
	mu  sync.Mutex
	reg *registry

	tariffMu      sync.RWMutex
	tariff        *domain.Tariff
	tariffVersion int

	log *EventLog
}

func New(inGates, outGates, capacity int, opts ...Option) (*Facility, error) {
	if inGates < 0 || outGates < 0 || capacity < 0 {
		return nil, fmt.Errorf("%w: in=%d out=%d capacity=%d",
			domain.ErrInvalidConfig, inGates, outGates, capacity)
	}
	f := &Facility{
		id:       uuid.New(),
		inGates:  inGates,
		outGates: outGates,
		clock:    SystemClock{},
		reg:      newRegistry(capacity),
		log:      NewEventLog(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Facility) ID() uuid.UUID { return f.id }
func (f *Facility) InGates() int  { return f.inGates }
func (f *Facility) OutGates() int { return f.outGates }
func (f *Facility) Capacity() int { return f.reg.capacity }
func (f *Facility) Clock() Clock  { return f.clock }

// TryEnter admits vehicle through entry gate and issues its ticket. A zero ts
// is replaced by the clock's current time.
func (f *Facility) TryEnter(vehicle domain.VehicleInfo, gate int, ts time.Time) (*domain.Ticket, error) {
	now := f.clock.Now()
	if ts.IsZero() {
		ts = now
	}

	f.mu.Lock()
	if f.reg.remaining == 0 {
		f.mu.Unlock()
		return nil, domain.ErrNoCapacity
	}
	if gate < 0 || gate >= f.inGates {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: entry gate %d of %d", domain.ErrInvalidGate, gate, f.inGates)
	}
	if err := vehicle.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.reg.contains(vehicle.ID) {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyParked, vehicle.ID)
	}

	f.reg.admit(vehicle.ID)
	entry := domain.LogEntry{Event: domain.EventEnter, Timestamp: ts, Gate: gate, Vehicle: vehicle}
	f.log.Append(entry)
	available := f.reg.remaining
	f.mu.Unlock()

	ticket := domain.NewTicket(f.id, vehicle.ID, domain.TimeOfDayOf(now), ts)
	f.notify(entry, available)
	return ticket, nil
}

// TryExit lets vehicle out through exit gate. The ticket is only compared
// against the vehicle, never modified; a nil ticket never matches.
func (f *Facility) TryExit(vehicle domain.VehicleInfo, gate int, ts time.Time, ticket domain.TicketHandle) error {
	if ticket == nil || ticket.VehicleID() != vehicle.ID {
		return domain.ErrTicketMismatch
	}
	if gate < 0 || gate >= f.outGates {
		return fmt.Errorf("%w: exit gate %d of %d", domain.ErrInvalidGate, gate, f.outGates)
	}
	if ts.IsZero() {
		ts = f.clock.Now()
	}

	f.mu.Lock()
	if !f.reg.contains(vehicle.ID) {
		f.mu.Unlock()
		return domain.ErrTicketAlreadyUsed
	}
	f.reg.release(vehicle.ID)
	entry := domain.LogEntry{Event: domain.EventExit, Timestamp: ts, Gate: gate, Vehicle: vehicle}
	f.log.Append(entry)
	available := f.reg.remaining
	f.mu.Unlock()

	f.notify(entry, available)
	return nil
}

func (f *Facility) AvailableSpaces() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reg.remaining
}

// Occupancy is a consistent view of the registry.
type Occupancy struct {
	Capacity  int
	Available int
	Parked    []string
}

func (f *Facility) Occupancy() Occupancy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Occupancy{
		Capacity:  f.reg.capacity,
		Available: f.reg.remaining,
		Parked:    f.reg.vehicles(),
	}
}

func (f *Facility) IsParked(vehicleID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reg.contains(vehicleID)
}

// SetupTariff validates and installs a private copy of t, replacing the
// current tariff as a whole.
func (f *Facility) SetupTariff(t domain.Tariff) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c := t.Clone()

	f.tariffMu.Lock()
	f.tariff = &c
	f.tariffVersion++
	f.tariffMu.Unlock()
	return nil
}

// Tariff returns a copy of the installed tariff and false when none is set.
func (f *Facility) Tariff() (domain.Tariff, bool) {
	t := f.currentTariff()
	if t == nil {
		return domain.Tariff{}, false
	}
	return t.Clone(), true
}

// TariffVersion counts SetupTariff calls that succeeded.
func (f *Facility) TariffVersion() int {
	f.tariffMu.RLock()
	defer f.tariffMu.RUnlock()
	return f.tariffVersion
}

// currentTariff returns the installed tariff. Installed tariffs are never
// mutated, so the pointer can be read after the lock is dropped.
func (f *Facility) currentTariff() *domain.Tariff {
	f.tariffMu.RLock()
	defer f.tariffMu.RUnlock()
	return f.tariff
}

// Logs returns the accepted passages with from <= Timestamp <= to.
func (f *Facility) Logs(from, to time.Time) []domain.LogEntry {
	return f.log.Range(from, to)
}

func (f *Facility) AllLogs() []domain.LogEntry {
	return f.log.All()
}

func (f *Facility) notify(entry domain.LogEntry, available int) {
	for _, o := range f.observers {
		o.Observe(entry, available)
	}
}
