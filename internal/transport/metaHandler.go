package transport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/gin-gonic/gin"
)

type MetaHandler struct {
	currencyService service.CurrencyService
	baseCurrency    string
}

func NewMetaHandler(currencyService service.CurrencyService, baseCurrency string) *MetaHandler {
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	return &MetaHandler{
		currencyService: currencyService,
		baseCurrency:    baseCurrency,
	}
}

// RatesSnapshot представляет срез таблицы курсов на момент ответа
type RatesSnapshot struct {
	Base      string             `json:"base"`
	Timestamp time.Time          `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

func (h *MetaHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    entity.Categories(),
	})
}

func (h *MetaHandler) GetRates(c *gin.Context) {
	rates, err := h.currencyService.GetRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data: RatesSnapshot{
			Base:      h.baseCurrency,
			Timestamp: time.Now().UTC(),
			Rates:     rates,
		},
	})
}

// Convert пересчитывает сумму в минорных единицах между валютами
func (h *MetaHandler) Convert(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: "invalid amount",
		})
		return
	}

	from := strings.ToUpper(c.Query("from"))
	to := strings.ToUpper(c.Query("to"))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: "from and to query parameters are required",
		})
		return
	}

	converted, err := h.currencyService.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data: map[string]interface{}{
			"amount":    amount,
			"from":      from,
			"to":        to,
			"converted": converted,
		},
	})
}
