// Package httperr maps domain.Error kinds onto HTTP status codes and a
// uniform {"detail": string} body, the way handler.UserHandler.Create maps a
// pgconn.PgError's unique-violation code onto 409 — generalized from one
// ad hoc type-switch into a table covering the whole domain.Kind taxonomy.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/domain"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUpstreamFailure:
		return http.StatusBadGateway
	case domain.KindConfigError:
		return http.StatusInternalServerError
	case domain.KindCancelled:
		return 499 // client closed request, nginx convention
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err as a JSON error body with the status its domain.Kind maps
// to. Errors with no domain.Kind (unexpected, unclassified failures) become
// a 500 with a generic message rather than leaking internals.
func Write(c *gin.Context, err error) {
	kind, ok := domain.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	var de *domain.Error
	message := err.Error()
	if errors.As(err, &de) {
		message = de.Message
	}
	c.JSON(statusFor(kind), gin.H{"detail": message})
}
