package service

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

type mockSessionRepo struct {
	OpenFunc     func(ctx context.Context, s *domain.ParkingSession) (*domain.ParkingSession, error)
	CloseFunc    func(ctx context.Context, ticketID string, exitGate int, exitTime time.Time) (*domain.ParkingSession, error)
	MarkPaidFunc func(ctx context.Context, ticketID string, amount domain.Price, paidAt time.Time) error
	FindFunc     func(ctx context.Context, ticketID string) (*domain.ParkingSession, error)
	ActiveFunc   func(ctx context.Context) ([]domain.ParkingSession, error)
}

func (m *mockSessionRepo) Open(ctx context.Context, s *domain.ParkingSession) (*domain.ParkingSession, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, s)
	}
	return s, nil
}

func (m *mockSessionRepo) Close(ctx context.Context, ticketID string, exitGate int, exitTime time.Time) (*domain.ParkingSession, error) {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, ticketID, exitGate, exitTime)
	}
	return &domain.ParkingSession{TicketID: ticketID}, nil
}

func (m *mockSessionRepo) MarkPaid(ctx context.Context, ticketID string, amount domain.Price, paidAt time.Time) error {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, ticketID, amount, paidAt)
	}
	return nil
}

func (m *mockSessionRepo) FindByTicketID(ctx context.Context, ticketID string) (*domain.ParkingSession, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, ticketID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepo) FindActive(ctx context.Context) ([]domain.ParkingSession, error) {
	if m.ActiveFunc != nil {
		return m.ActiveFunc(ctx)
	}
	return []domain.ParkingSession{}, nil
}

type mockEventRepo struct {
	mu      sync.Mutex
	entries []domain.LogEntry

	AppendErr    error
	FindRangeErr error
}

func (m *mockEventRepo) Append(ctx context.Context, facilityID string, entry domain.LogEntry) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

func (m *mockEventRepo) FindRange(ctx context.Context, facilityID string, from, to time.Time) ([]domain.LogEntry, error) {
	if m.FindRangeErr != nil {
		return nil, m.FindRangeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.LogEntry{}
	for _, e := range m.entries {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockTariffRepo struct {
	SaveFunc   func(ctx context.Context, facilityID string, t domain.Tariff) (int, error)
	LatestFunc func(ctx context.Context, facilityID string) (domain.Tariff, int, error)
}

func (m *mockTariffRepo) Save(ctx context.Context, facilityID string, t domain.Tariff) (int, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, facilityID, t)
	}
	return 1, nil
}

func (m *mockTariffRepo) Latest(ctx context.Context, facilityID string) (domain.Tariff, int, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, facilityID)
	}
	return domain.Tariff{}, 0, repository.ErrNotFound
}

// tariffTable behaves like the tariffs table: versions are assigned by the
// store and (facility, version) is unique. It outlives services built on it.
type tariffTable struct {
	mu   sync.Mutex
	rows map[string]map[int]domain.Tariff
}

func newTariffTable() *tariffTable {
	return &tariffTable{rows: make(map[string]map[int]domain.Tariff)}
}

func (tt *tariffTable) Save(ctx context.Context, facilityID string, t domain.Tariff) (int, error) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	versions := tt.rows[facilityID]
	if versions == nil {
		versions = make(map[int]domain.Tariff)
		tt.rows[facilityID] = versions
	}
	next := 1
	for v := range versions {
		if v >= next {
			next = v + 1
		}
	}
	if _, taken := versions[next]; taken {
		return 0, repository.ErrDuplicateEntry
	}
	versions[next] = t.Clone()
	return next, nil
}

func (tt *tariffTable) Latest(ctx context.Context, facilityID string) (domain.Tariff, int, error) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	latest := 0
	for v := range tt.rows[facilityID] {
		if v > latest {
			latest = v
		}
	}
	if latest == 0 {
		return domain.Tariff{}, 0, repository.ErrNotFound
	}
	return tt.rows[facilityID][latest].Clone(), latest, nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User

	CreateErr error
	FindErr   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	u := *user
	u.ID = len(m.users) + 1
	m.users[u.Username] = &u
	out := u
	return &out, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type mockMessageLog struct {
	mu   sync.Mutex
	msgs []domain.GateMessageLog
}

func (m *mockMessageLog) Create(ctx context.Context, msg *domain.GateMessageLog) error {
	m.mu.Lock()
	m.msgs = append(m.msgs, *msg)
	m.mu.Unlock()
	return nil
}

func (m *mockMessageLog) statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.msgs))
	for _, msg := range m.msgs {
		out = append(out, msg.ProcessedStatus)
	}
	return out
}

type mockMQTT struct {
	mu     sync.Mutex
	inputs []*iotdataplane.PublishInput
	Err    error
}

func (m *mockMQTT) Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	m.inputs = append(m.inputs, params)
	m.mu.Unlock()
	return &iotdataplane.PublishOutput{}, nil
}

type mockDetector struct {
	DetectTextFunc func(ctx context.Context, params *rekognition.DetectTextInput) (*rekognition.DetectTextOutput, error)
}

func (m *mockDetector) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	return m.DetectTextFunc(ctx, params)
}

type ticketSenderFunc func(ctx context.Context, gate int, ticket *domain.Ticket) error

func (f ticketSenderFunc) SendTicket(ctx context.Context, gate int, ticket *domain.Ticket) error {
	return f(ctx, gate, ticket)
}

type publisherFunc func(n domain.FacilityEventNotification) bool

func (f publisherFunc) Publish(n domain.FacilityEventNotification) bool { return f(n) }
