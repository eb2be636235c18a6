package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenvvay/Parking/internal/domain"
)

func setupTariffRouter(ps ParkingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTariffHandler(ps)
	r.GET("/tariff", h.Get)
	r.PUT("/tariff", h.Put)
	return r
}

func TestTariffHandler_Get(t *testing.T) {
	installed := false
	ps := &MockParkingService{
		TariffFunc: func() (domain.Tariff, bool) {
			return domain.UniformTariff(2), installed
		},
	}
	r := setupTariffRouter(ps)

	w := doJSON(r, http.MethodGet, "/tariff", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	installed = true
	w = doJSON(r, http.MethodGet, "/tariff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"from":"00:00"`)
	assert.Contains(t, w.Body.String(), `"to":"24:00"`)

	w = doJSON(r, http.MethodGet, "/tariff?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "monday")
}

func TestTariffHandler_PutJSON(t *testing.T) {
	var got domain.Tariff
	ps := &MockParkingService{
		SetTariffFunc: func(ctx context.Context, tr domain.Tariff) (int, error) {
			if err := tr.Validate(); err != nil {
				return 0, err
			}
			got = tr
			return 3, nil
		},
	}
	r := setupTariffRouter(ps)

	body := `[[{"interval":{"from":"08:00","to":"20:00"},"price":1.5}],[],[],[],[],[],[]]`
	req := httptest.NewRequest(http.MethodPut, "/tariff", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"version":3`)
	require.Len(t, got[0], 1)
	assert.Equal(t, domain.TimeOfDay{Hour: 8}, got[0][0].Interval.From)
	assert.Equal(t, domain.Price(1.5), got[0][0].Price)

	bad := `[[{"interval":{"from":"20:00","to":"08:00"},"price":1}],[],[],[],[],[],[]]`
	req = httptest.NewRequest(http.MethodPut, "/tariff", strings.NewReader(bad))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/tariff", strings.NewReader(`{"nope":true}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTariffHandler_PutYAML(t *testing.T) {
	var got domain.Tariff
	ps := &MockParkingService{
		SetTariffFunc: func(ctx context.Context, tr domain.Tariff) (int, error) {
			got = tr
			return 1, nil
		},
	}
	r := setupTariffRouter(ps)

	body := "unit: minute\ndefault:\n  - from: \"00:00\"\n    to: \"24:00\"\n    price: 1\n"
	req := httptest.NewRequest(http.MethodPut, "/tariff", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.UniformTariff(1), got)

	req = httptest.NewRequest(http.MethodPut, "/tariff", strings.NewReader("unit: fortnight\n"))
	req.Header.Set("Content-Type", "application/x-yaml")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
