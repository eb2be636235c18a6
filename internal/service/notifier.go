package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/metrics"
)

// Publisher is satisfied by notify.Dispatcher.
type Publisher interface {
	Publish(n domain.FacilityEventNotification) bool
}

// FacilityNotifier turns accepted passages into notifications. It is
// registered as a facility observer, so it must not block.
type FacilityNotifier struct {
	facilityID string
	capacity   int
	publisher  Publisher
	metrics    *metrics.Metrics

	// mu orders gauge updates and publishes; live, when set, is read under it.
	mu   sync.Mutex
	live func() int
}

func NewFacilityNotifier(facilityID uuid.UUID, capacity int, publisher Publisher, m *metrics.Metrics) *FacilityNotifier {
	return &FacilityNotifier{
		facilityID: facilityID.String(),
		capacity:   capacity,
		publisher:  publisher,
		metrics:    m,
	}
}

// UseLiveAvailability makes Observe report fn() instead of the count captured
// with the passage. Observers run after the facility lock is released, so
// captured counts of concurrent passages may arrive out of order; the last
// notification published then still matches the facility.
func (n *FacilityNotifier) UseLiveAvailability(fn func() int) {
	n.mu.Lock()
	n.live = fn
	n.mu.Unlock()
}

func (n *FacilityNotifier) Observe(entry domain.LogEntry, available int) {
	n.metrics.Passage(entry.Event, entry.Gate)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.live != nil {
		available = n.live()
	}
	n.metrics.SetOccupancy(available, n.capacity)
	if n.publisher == nil {
		return
	}
	n.publisher.Publish(domain.FacilityEventNotification{
		EventID:       uuid.NewString(),
		FacilityID:    n.facilityID,
		EventType:     entry.Event,
		GateDirection: domain.DirectionOf(entry.Event),
		Gate:          entry.Gate,
		Vehicle:       entry.Vehicle,
		Timestamp:     entry.Timestamp,
		Available:     available,
		Capacity:      n.capacity,
	})
}
