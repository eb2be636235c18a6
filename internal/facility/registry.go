package facility

import "sort"

// registry is the capacity counter and the set of parked vehicles. The two
// must move together, so every method expects the caller to hold Facility.mu.
type registry struct {
	capacity  int
	remaining int
	parked    map[string]struct{}
}

func newRegistry(capacity int) *registry {
	return &registry{
		capacity:  capacity,
		remaining: capacity,
		parked:    make(map[string]struct{}, capacity),
	}
}

func (r *registry) contains(vehicleID string) bool {
	_, ok := r.parked[vehicleID]
	return ok
}

// admit assumes remaining > 0 and vehicleID not yet parked.
func (r *registry) admit(vehicleID string) {
	r.parked[vehicleID] = struct{}{}
	r.remaining--
}

// release assumes vehicleID is parked.
func (r *registry) release(vehicleID string) {
	delete(r.parked, vehicleID)
	r.remaining++
}

func (r *registry) occupied() int {
	return len(r.parked)
}

func (r *registry) vehicles() []string {
	out := make([]string, 0, len(r.parked))
	for id := range r.parked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
