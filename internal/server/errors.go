package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecompass/backend/internal/db"
)

var errNotConfigured = errors.New("credential is not configured")

// upstreamError is any failed round-trip to an external API. Status is zero
// for transport failures.
type upstreamError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *upstreamError) Error() string {
	switch {
	case e.Err != nil && e.Status == 0:
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed (%d): %v", e.Service, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s request failed (%d): %s", e.Service, e.Status, e.Body)
	}
}

func (e *upstreamError) Unwrap() error {
	return e.Err
}

func isClientRejection(err error) bool {
	var upErr *upstreamError
	if !errors.As(err, &upErr) {
		return false
	}
	return upErr.Status >= 400 && upErr.Status < 500
}

// writeUpstreamError logs the detail and answers with a generic 500.
func (a *App) writeUpstreamError(c *gin.Context, err error, detail string) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", c.FullPath()),
	}
	if user, ok := authUserFromContext(c); ok {
		fields = append(fields, zap.String("user_id", user.ID))
	}
	switch {
	case errors.Is(err, errNotConfigured):
		a.log.Error("handler dependency not configured", fields...)
	case errors.Is(err, db.ErrUnavailable):
		a.log.Error("relational store unavailable", fields...)
	case errors.Is(err, context.DeadlineExceeded):
		a.log.Error("upstream request timed out", fields...)
	default:
		a.log.Error("upstream request failed", fields...)
	}
	writeError(c, http.StatusInternalServerError, detail)
}
