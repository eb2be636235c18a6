package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

type GateControllerRepository struct {
	mu          sync.RWMutex
	controllers map[string]domain.GateController
}

func NewGateControllerRepository() *GateControllerRepository {
	return &GateControllerRepository{controllers: make(map[string]domain.GateController)}
}

func (r *GateControllerRepository) Touch(ctx context.Context, s domain.GateControllerSighting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gc, ok := r.controllers[s.ThingName]
	if !ok {
		gc = domain.GateController{ThingName: s.ThingName, CreatedAt: time.Now().UTC()}
	}
	gc.MessageCount++
	if !s.SeenAt.Before(gc.LastSeenAt) {
		gc.LastTopic = s.Topic
		gc.LastMessageType = s.MessageType
		gc.LastStatus = s.Status
		gc.LastSeenAt = s.SeenAt.UTC()
	}
	r.controllers[s.ThingName] = gc
	return nil
}

func (r *GateControllerRepository) FindAll(ctx context.Context) ([]domain.GateController, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.GateController, 0, len(r.controllers))
	for _, gc := range r.controllers {
		out = append(out, gc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ThingName < out[j].ThingName })
	return out, nil
}

func (r *GateControllerRepository) FindByThingName(ctx context.Context, thingName string) (*domain.GateController, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gc, ok := r.controllers[thingName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &gc, nil
}

var _ repository.GateControllerRepository = (*GateControllerRepository)(nil)
