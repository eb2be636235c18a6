package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenvvay/Parking/internal/domain"
)

func setupParkingRouter(ps ParkingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewParkingHandler(ps)
	r.POST("/gates/entry/:gate", h.Enter)
	r.POST("/gates/exit/:gate", h.Exit)
	r.GET("/spaces", h.Spaces)
	r.GET("/vehicles", h.Vehicles)
	r.GET("/logs", h.Logs)
	r.GET("/tickets/:id/payment", h.Quote)
	r.POST("/tickets/:id/payment", h.Pay)
	r.GET("/tickets/:id/session", h.Session)
	r.GET("/sessions/active", h.ActiveSessions)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestParkingHandler_Enter(t *testing.T) {
	ticket := domain.NewTicket(uuid.New(), "A001AA", domain.TimeOfDay{Hour: 10}, time.Now())
	var gotGate int
	var gotTS time.Time
	ps := &MockParkingService{
		EnterFunc: func(ctx context.Context, gate int, v domain.VehicleInfo, ts time.Time) (*domain.Ticket, error) {
			gotGate, gotTS = gate, ts
			if v.ID == "FULL" {
				return nil, domain.ErrNoCapacity
			}
			if gate > 1 {
				return nil, fmt.Errorf("%w: entry gate %d of 2", domain.ErrInvalidGate, gate)
			}
			return ticket, nil
		},
	}
	r := setupParkingRouter(ps)

	w := doJSON(r, http.MethodPost, "/gates/entry/1", domain.EnterRequestDTO{Vehicle: domain.VehicleInfo{ID: "A001AA"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var dto domain.TicketDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, ticket.ID().String(), dto.ID)
	assert.Equal(t, 1, gotGate)
	assert.True(t, gotTS.IsZero())

	w = doJSON(r, http.MethodPost, "/gates/entry/0", domain.EnterRequestDTO{Vehicle: domain.VehicleInfo{ID: "A001AA"}, Timestamp: "2024-01-01T10:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), gotTS)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"full", "/gates/entry/0", domain.EnterRequestDTO{Vehicle: domain.VehicleInfo{ID: "FULL"}}, http.StatusConflict},
		{"bad gate index", "/gates/entry/5", domain.EnterRequestDTO{Vehicle: domain.VehicleInfo{ID: "A001AA"}}, http.StatusBadRequest},
		{"gate not a number", "/gates/entry/north", domain.EnterRequestDTO{Vehicle: domain.VehicleInfo{ID: "A001AA"}}, http.StatusBadRequest},
		{"missing vehicle id", "/gates/entry/0", map[string]interface{}{"vehicle": map[string]string{}}, http.StatusBadRequest},
		{"bad class", "/gates/entry/0", map[string]interface{}{"vehicle": map[string]string{"id": "X", "class": "tank"}}, http.StatusBadRequest},
		{"bad timestamp", "/gates/entry/0", domain.EnterRequestDTO{Vehicle: domain.VehicleInfo{ID: "A001AA"}, Timestamp: "yesterday"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestParkingHandler_Exit(t *testing.T) {
	ps := &MockParkingService{
		ExitFunc: func(ctx context.Context, gate int, v domain.VehicleInfo, ticketID string, ts time.Time) error {
			switch ticketID {
			case "used":
				return domain.ErrTicketAlreadyUsed
			case "other":
				return domain.ErrTicketMismatch
			case "missing":
				return domain.ErrTicketNotFound
			case "broken":
				return fmt.Errorf("unexpected")
			}
			return nil
		},
	}
	r := setupParkingRouter(ps)

	for ticketID, status := range map[string]int{
		"ok":      http.StatusOK,
		"used":    http.StatusConflict,
		"other":   http.StatusConflict,
		"missing": http.StatusNotFound,
		"broken":  http.StatusInternalServerError,
	} {
		w := doJSON(r, http.MethodPost, "/gates/exit/0", domain.ExitRequestDTO{Vehicle: domain.VehicleInfo{ID: "A001AA"}, TicketID: ticketID})
		assert.Equal(t, status, w.Code, ticketID)
		if status != http.StatusOK {
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "exit refused", body["error"])
			assert.NotEmpty(t, body["details"])
		}
	}

	w := doJSON(r, http.MethodPost, "/gates/exit/0", map[string]interface{}{"vehicle": map[string]string{"id": "A001AA"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParkingHandler_SpacesAndVehicles(t *testing.T) {
	ps := &MockParkingService{
		AvailabilityFunc: func() domain.AvailabilityDTO {
			return domain.AvailabilityDTO{Capacity: 10, Available: 7, Occupied: 3}
		},
		ActiveFunc: func() []string { return []string{"A001AA", "B002BB"} },
	}
	r := setupParkingRouter(ps)

	w := doJSON(r, http.MethodGet, "/spaces", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"capacity":10,"available":7,"occupied":3}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/vehicles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"vehicles":["A001AA","B002BB"]}`, w.Body.String())
}

func TestParkingHandler_Payment(t *testing.T) {
	ps := &MockParkingService{
		QuoteFunc: func(ticketID string) (domain.PaymentQuoteDTO, error) {
			if ticketID != "t1" {
				return domain.PaymentQuoteDTO{}, domain.ErrTicketNotFound
			}
			return domain.PaymentQuoteDTO{TicketID: "t1", Amount: 30}, nil
		},
		PayFunc: func(ctx context.Context, ticketID string, amount domain.Price) (domain.PaymentResultDTO, error) {
			return domain.PaymentResultDTO{TicketID: ticketID, Accepted: amount >= 30, Due: 30}, nil
		},
	}
	r := setupParkingRouter(ps)

	w := doJSON(r, http.MethodGet, "/tickets/t1/payment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ticket_id":"t1","amount":30,"paid":false}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/tickets/zz/payment", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/tickets/t1/payment", domain.PaymentRequestDTO{Amount: 10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ticket_id":"t1","accepted":false,"due":30}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/tickets/t1/payment", domain.PaymentRequestDTO{Amount: 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepted":true`)

	w = doJSON(r, http.MethodPost, "/tickets/t1/payment", map[string]float64{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParkingHandler_Logs(t *testing.T) {
	var gotFrom, gotTo time.Time
	entry := domain.LogEntry{Event: domain.EventEnter, Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Vehicle: domain.VehicleInfo{ID: "A001AA"}}
	ps := &MockParkingService{
		LogsFunc: func(from, to time.Time) []domain.LogEntry {
			gotFrom, gotTo = from, to
			return []domain.LogEntry{entry}
		},
		ArchivedLogsFunc: func(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error) {
			return []domain.LogEntry{entry, entry}, nil
		},
	}
	r := setupParkingRouter(ps)

	w := doJSON(r, http.MethodGet, "/logs?from=2024-01-01T09:00:00Z&to=2024-01-01T11:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), gotTo)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = doJSON(r, http.MethodGet, "/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotFrom.IsZero())
	assert.True(t, gotTo.After(time.Now()))

	w = doJSON(r, http.MethodGet, "/logs?source=archive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)

	w = doJSON(r, http.MethodGet, "/logs?from=monday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParkingHandler_Sessions(t *testing.T) {
	stored := domain.ParkingSession{ID: 7, TicketID: "t-1", VehicleID: "A001AA", Status: domain.SessionActive}
	ps := &MockParkingService{
		SessionFunc: func(ctx context.Context, ticketID string) (*domain.ParkingSession, error) {
			if ticketID == "t-1" {
				return &stored, nil
			}
			return nil, domain.ErrTicketNotFound
		},
		ActiveSessionsFunc: func(ctx context.Context) ([]domain.ParkingSession, error) {
			return []domain.ParkingSession{stored}, nil
		},
	}
	r := setupParkingRouter(ps)

	w := doJSON(r, http.MethodGet, "/tickets/t-1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vehicle_id":"A001AA"`)
	assert.Contains(t, w.Body.String(), `"exit_time":null`)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/tickets/t-2/session", nil).Code)

	w = doJSON(r, http.MethodGet, "/sessions/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	ps.ActiveSessionsFunc = func(ctx context.Context) ([]domain.ParkingSession, error) {
		return nil, domain.ErrHistoryUnavailable
	}
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(r, http.MethodGet, "/sessions/active", nil).Code)
}
