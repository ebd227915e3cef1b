package httpapi

import (
	"errors"
	"net/http"

	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

// statusOverrides pins specific codes to a status the default kind mapping
// would not pick. Checkout shortfalls are a client-resolvable 400 carrying
// the full issue list, not a 409.
var statusOverrides = map[string]int{
	"STOCK_ISSUES": http.StatusBadRequest,
}

// httpStatusFromError maps a core error to (status, code, message). Errors
// outside the apperr taxonomy are masked as INTERNAL.
func httpStatusFromError(err error) (int, string, string) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	if status, ok := statusOverrides[ae.Code]; ok {
		return status, ae.Code, ae.Message
	}

	switch ae.Kind {
	case apperr.KindValidation, apperr.KindInvalidTransition:
		return http.StatusBadRequest, ae.Code, ae.Message
	case apperr.KindNotFound:
		return http.StatusNotFound, ae.Code, ae.Message
	case apperr.KindConflict:
		return http.StatusConflict, ae.Code, ae.Message
	case apperr.KindUnauthorized:
		return http.StatusForbidden, ae.Code, ae.Message
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func errorDetails(err error) any {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}
