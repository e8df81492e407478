package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/service"

	"github.com/sirupsen/logrus"
)

// FxRefreshWorker периодически прогревает кэш курсов валют
type FxRefreshWorker struct {
	currencyService service.CurrencyService
	interval        time.Duration
}

func NewFxRefreshWorker(currencyService service.CurrencyService, interval time.Duration) *FxRefreshWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &FxRefreshWorker{
		currencyService: currencyService,
		interval:        interval,
	}
}

func (w *FxRefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("FX refresh worker started")

	// Первичный прогрев кэша, чтобы конвертация работала сразу после старта
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("FX refresh worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *FxRefreshWorker) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := w.currencyService.Refresh(refreshCtx); err != nil {
		logrus.Errorf("Failed to refresh currency rates: %v", err)
		return
	}

	logrus.Info("Currency rates refreshed")
}
