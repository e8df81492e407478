package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCurrencyService struct {
	rates map[string]float64
}

func (s *fakeCurrencyService) GetRates(ctx context.Context) (map[string]float64, error) {
	return s.rates, nil
}

func (s *fakeCurrencyService) Convert(ctx context.Context, amountMinor int64, from, to string) (int64, error) {
	if from == to {
		return amountMinor, nil
	}
	fromRate, ok := s.rates[from]
	if !ok {
		return 0, fmt.Errorf("%w: %s", entity.ErrMissingRate, from)
	}
	toRate, ok := s.rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", entity.ErrMissingRate, to)
	}
	return int64(float64(amountMinor) * toRate / fromRate), nil
}

func (s *fakeCurrencyService) Refresh(ctx context.Context) error {
	return nil
}

func newFxRouter(rates map[string]float64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewMetaHandler(&fakeCurrencyService{rates: rates}, "USD")

	router := gin.New()
	router.GET("/fx", handler.GetRates)
	router.GET("/fx/convert", handler.Convert)
	return router
}

// TestGetRatesSnapshot тестирует форму среза курсов: база, метка времени, таблица
func TestGetRatesSnapshot(t *testing.T) {
	router := newFxRouter(map[string]float64{"USD": 1.0, "EUR": 0.9})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fx", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    RatesSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "USD", resp.Data.Base)
	assert.False(t, resp.Data.Timestamp.IsZero())
	assert.Equal(t, 0.9, resp.Data.Rates["EUR"])
}

// TestConvertEndpoint тестирует конвертацию через HTTP
func TestConvertEndpoint(t *testing.T) {
	router := newFxRouter(map[string]float64{"USD": 1.0, "EUR": 0.9})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fx/convert?amount=4500&from=usd&to=eur", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Валюты нормализуются к верхнему регистру
	assert.Equal(t, "USD", resp.Data["from"])
	assert.Equal(t, "EUR", resp.Data["to"])
	assert.Equal(t, float64(4050), resp.Data["converted"])
}

// TestConvertEndpointErrors тестирует коды ошибок конвертации
func TestConvertEndpointErrors(t *testing.T) {
	router := newFxRouter(map[string]float64{"USD": 1.0})

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing rate",
			url:        "/fx/convert?amount=100&from=USD&to=GBP",
			wantStatus: http.StatusBadGateway,
			wantCode:   "missing_rate",
		},
		{
			name:       "negative amount",
			url:        "/fx/convert?amount=-5&from=USD&to=EUR",
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "missing currency params",
			url:        "/fx/convert?amount=100",
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}
