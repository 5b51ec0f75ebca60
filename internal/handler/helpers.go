package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tallypos/internal/apierror"
	"tallypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps the service failure taxonomy onto HTTP statuses and
// stable machine-readable codes. Unknown errors become an opaque 500 so
// internals never leak to clients.
func writeServiceError(c *gin.Context, err error) {
	var (
		invalidReq   *service.InvalidRequestError
		notFound     *service.NotFoundError
		inactive     *service.ProductInactiveError
		noStock      *service.InsufficientStockError
		mismatch     *service.AmountMismatchError
		badTransit   *service.InvalidStateTransitionError
		authDeclined *service.PaymentAuthError
		storage      *service.StorageError
	)

	switch {
	case errors.As(err, &invalidReq):
		c.JSON(http.StatusBadRequest, apierror.NewCoded("invalid_request", err.Error(), nil))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.NewCoded("not_found", err.Error(), map[string]any{
			"kind": notFound.Kind,
			"id":   notFound.ID,
		}))
	case errors.As(err, &inactive):
		c.JSON(http.StatusConflict, apierror.NewCoded("product_inactive", err.Error(), map[string]any{
			"product_id": inactive.ProductID.String(),
		}))
	case errors.As(err, &noStock):
		c.JSON(http.StatusConflict, apierror.NewCoded("insufficient_stock", err.Error(), map[string]any{
			"product_id": noStock.ProductID.String(),
			"available":  noStock.Available,
			"requested":  noStock.Requested,
		}))
	case errors.As(err, &mismatch):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCoded("amount_mismatch", err.Error(), map[string]any{
			"expected": mismatch.Expected.StringFixed(2),
			"tendered": mismatch.Actual.StringFixed(2),
		}))
	case errors.As(err, &badTransit):
		c.JSON(http.StatusConflict, apierror.NewCoded("invalid_state_transition", err.Error(), map[string]any{
			"from": badTransit.From,
			"to":   badTransit.To,
		}))
	case errors.As(err, &authDeclined):
		c.JSON(http.StatusPaymentRequired, apierror.NewCoded("payment_declined", err.Error(), map[string]any{
			"method": authDeclined.Method,
		}))
	case errors.As(err, &storage):
		c.JSON(http.StatusServiceUnavailable, apierror.NewCoded("storage_unavailable",
			"transaction could not be completed, please retry", nil))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("internal error"))
	}
}
