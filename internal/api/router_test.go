package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenvvay/Parking/internal/api/middleware"
	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/facility"
	"github.com/greenvvay/Parking/internal/service"
)

type roleValidator struct{}

// ValidateToken treats the token as the role name.
func (roleValidator) ValidateToken(token string) (*jwt.Token, jwt.MapClaims, error) {
	if token != domain.RoleAdmin && token != domain.RoleOperator {
		return nil, nil, errors.New("unknown token")
	}
	return &jwt.Token{Valid: true}, jwt.MapClaims{"sub": "1", "role": token, "username": token}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f, err := facility.New(1, 1, 2, facility.WithClock(facility.NewFixedClock(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	ps := service.NewParkingService(f)
	return SetupRouter(Dependencies{
		Parking: ps,
		Auth:    service.NewAuthService(nil, "secret", time.Hour, nil),
		AuthMw:  middleware.NewAuthMiddleware(roleValidator{}, nil),
		Metrics: http.NotFoundHandler(),
	})
}

func request(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicAndProtected(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/v1/spaces", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/v1/spaces", "forged", "").Code)

	w := request(r, http.MethodGet, "/api/v1/spaces", domain.RoleOperator, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"capacity":2,"available":2,"occupied":0}`, w.Body.String())

	// optional routes are not mounted
	assert.Equal(t, http.StatusNotFound, request(r, http.MethodPost, "/api/v1/lpr/process-image", domain.RoleAdmin, "{}").Code)
	assert.Equal(t, http.StatusNotFound, request(r, http.MethodGet, "/api/v1/controllers", domain.RoleAdmin, "").Code)
}

func TestRouter_TariffIsAdminOnly(t *testing.T) {
	r := newTestRouter(t)
	body := `[[{"interval":{"from":"00:00","to":"24:00"},"price":1}],[],[],[],[],[],[]]`

	assert.Equal(t, http.StatusForbidden, request(r, http.MethodPut, "/api/v1/tariff", domain.RoleOperator, body).Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodPut, "/api/v1/tariff", domain.RoleAdmin, body).Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/tariff", domain.RoleOperator, "").Code)
}

func TestRouter_EnterPayExit(t *testing.T) {
	r := newTestRouter(t)
	op := domain.RoleOperator

	w := request(r, http.MethodPost, "/api/v1/gates/entry/0", op, `{"vehicle":{"id":"A001AA","class":"compact"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ticket domain.TicketDTO
	require.NoError(t, jsonDecode(w, &ticket))

	w = request(r, http.MethodPost, "/api/v1/gates/entry/0", op, `{"vehicle":{"id":"A001AA"}}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(r, http.MethodGet, "/api/v1/tickets/"+ticket.ID+"/payment", op, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":0`)

	w = request(r, http.MethodPost, "/api/v1/gates/exit/0", op, `{"vehicle":{"id":"A001AA"},"ticket_id":"`+ticket.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(r, http.MethodPost, "/api/v1/gates/exit/0", op, `{"vehicle":{"id":"A001AA"},"ticket_id":"`+ticket.ID+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(r, http.MethodGet, "/api/v1/logs", op, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestRouter_Metrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f, err := facility.New(1, 1, 1)
	require.NoError(t, err)
	r := SetupRouter(Dependencies{
		Parking: service.NewParkingService(f),
		AuthMw:  middleware.NewAuthMiddleware(roleValidator{}, nil),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("parking_available_spaces 1"))
		}),
	})

	w := request(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "parking_available_spaces")
}

func jsonDecode(w *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}
