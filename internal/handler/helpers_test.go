package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tallypos/internal/dto"
	"tallypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func record(err error) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeServiceError(c, err)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestWriteServiceError_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid request", &service.InvalidRequestError{Reason: "bad"}, http.StatusBadRequest, "invalid_request"},
		{"not found", &service.NotFoundError{Kind: "product", ID: "x"}, http.StatusNotFound, "not_found"},
		{"inactive product", &service.ProductInactiveError{ProductID: uuid.New(), Name: "W"}, http.StatusConflict, "product_inactive"},
		{"insufficient stock", &service.InsufficientStockError{ProductID: uuid.New(), Name: "W", Available: 1, Requested: 2}, http.StatusConflict, "insufficient_stock"},
		{"amount mismatch", &service.AmountMismatchError{Expected: decimal.New(4450, -2), Actual: decimal.New(4000, -2)}, http.StatusUnprocessableEntity, "amount_mismatch"},
		{"bad transition", &service.InvalidStateTransitionError{From: "voided", To: "voided"}, http.StatusConflict, "invalid_state_transition"},
		{"payment declined", &service.PaymentAuthError{Method: "card", Cause: errors.New("declined")}, http.StatusPaymentRequired, "payment_declined"},
		{"storage", &service.StorageError{Err: errors.New("SQLSTATE 40001")}, http.StatusServiceUnavailable, "storage_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := record(tc.err)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCode, body["code"])
		})
	}
}

func TestWriteServiceError_UnknownErrorIsOpaque(t *testing.T) {
	w, body := record(errors.New("pq: connection refused at 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", body["detail"])
}

func TestWriteServiceError_StockMeta(t *testing.T) {
	pid := uuid.New()
	_, body := record(&service.InsufficientStockError{ProductID: pid, Name: "Widget", Available: 1, Requested: 3})
	meta, ok := body["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, pid.String(), meta["product_id"])
	assert.Equal(t, float64(1), meta["available"])
	assert.Equal(t, float64(3), meta["requested"])
}

func TestValidate_VoidReason(t *testing.T) {
	// Any non-empty reason is acceptable, however short.
	assert.NoError(t, validate.Struct(dto.VoidSaleRequest{Reason: "dupe"}))

	err := validate.Struct(dto.VoidSaleRequest{})
	require.Error(t, err)
}
