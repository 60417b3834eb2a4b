package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"collectible-order/internal/domain"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeNotFound       = "NOT_FOUND"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: msg})
}

// writeOrderError maps an order failure onto a status by its kind. Anything
// that is not an OrderError is reported as an internal error without detail.
func writeOrderError(c *gin.Context, err error) {
	_ = c.Error(err)

	var oerr *domain.OrderError
	if !errors.As(err, &oerr) {
		writeError(c, http.StatusInternalServerError, string(domain.CodeInternal), "internal error")
		return
	}
	writeError(c, statusFor(oerr.Kind()), string(oerr.Code), oerr.Msg)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
