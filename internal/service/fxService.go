package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	cache "github.com/ds124wfegd/eventmarket/internal/database/redis"
	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// providerResponse описывает ответ поставщика курсов
type providerResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

type currencyService struct {
	ratesCache   *cache.RatesCache
	providerURL  string
	baseCurrency string
	httpClient   *http.Client
	group        singleflight.Group
}

// NewCurrencyService создает новый экземпляр CurrencyService
func NewCurrencyService(ratesCache *cache.RatesCache, providerURL, baseCurrency string, requestTimeout time.Duration) CurrencyService {
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &currencyService{
		ratesCache:   ratesCache,
		providerURL:  providerURL,
		baseCurrency: baseCurrency,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

// GetRates возвращает таблицу курсов из кэша, при промахе обновляет ее.
// Одновременные промахи схлопываются в один запрос к поставщику.
func (s *currencyService) GetRates(ctx context.Context) (map[string]float64, error) {
	rates, err := s.ratesCache.Get(ctx)
	if err != nil {
		logrus.Errorf("Ошибка чтения кэша курсов: %v", err)
	}
	if rates != nil {
		return rates, nil
	}

	result, err, _ := s.group.Do("fx:refresh", func() (interface{}, error) {
		return s.refreshRates(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result.(map[string]float64), nil
}

// Refresh принудительно обновляет таблицу курсов
func (s *currencyService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("fx:refresh", func() (interface{}, error) {
		return s.refreshRates(ctx)
	})
	return err
}

// refreshRates запрашивает курсы у поставщика; при сбое остается
// минимальная таблица с базовой валютой, чтобы сервис продолжал работать
func (s *currencyService) refreshRates(ctx context.Context) (map[string]float64, error) {
	rates, err := s.fetchRates(ctx)
	if err != nil {
		logrus.Warnf("Не удалось получить курсы валют, используется запасная таблица: %v", err)
		rates = map[string]float64{s.baseCurrency: 1.0}
	}

	if err := s.ratesCache.Set(ctx, rates); err != nil {
		logrus.Errorf("Ошибка записи курсов в кэш: %v", err)
	}

	return rates, nil
}

func (s *currencyService) fetchRates(ctx context.Context) (map[string]float64, error) {
	url := fmt.Sprintf("%s?base=%s", s.providerURL, s.baseCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %v", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates provider request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates provider error: %s", resp.Status)
	}

	var parsed providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %v", err)
	}

	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("rates provider returned empty table")
	}

	rates := parsed.Rates
	if _, ok := rates[s.baseCurrency]; !ok {
		rates[s.baseCurrency] = 1.0
	}

	logrus.Infof("Таблица курсов обновлена: %d валют", len(rates))
	return rates, nil
}

// Convert пересчитывает сумму в минорных единицах между валютами
func (s *currencyService) Convert(ctx context.Context, amountMinor int64, from, to string) (int64, error) {
	if from == to {
		return amountMinor, nil
	}

	rates, err := s.GetRates(ctx)
	if err != nil {
		return 0, err
	}

	return ConvertAmount(amountMinor, from, to, rates)
}

// ConvertAmount пересчитывает сумму по таблице курсов. Отсутствие любого из
// курсов это ошибка: молчаливый курс 1:1 искажал бы цены.
func ConvertAmount(amountMinor int64, from, to string, rates map[string]float64) (int64, error) {
	if from == to {
		return amountMinor, nil
	}

	fromRate, ok := rates[from]
	if !ok || fromRate == 0 {
		return 0, fmt.Errorf("%w: %s", entity.ErrMissingRate, from)
	}

	toRate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", entity.ErrMissingRate, to)
	}

	converted := float64(amountMinor) * toRate / fromRate
	return int64(math.Round(converted)), nil
}
