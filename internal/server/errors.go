package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/albertus-andito/fake-news-detection/internal/core/classify"
	"github.com/albertus-andito/fake-news-detection/internal/core/resolve"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
	"github.com/albertus-andito/fake-news-detection/internal/core/updates"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

// writeError turns an action error into a notification naming the operation
// and echoing the collaborator's payload.
func (s *Server) writeError(c *gin.Context, op string, err error) {
	body := gin.H{"operation": op, "error": err.Error()}

	var se *service.StatusError
	if errors.As(err, &se) && se.Message != "" {
		body["message"] = se.Message
	}

	var confirm *resolve.ConfirmationRequired
	var conflict *resolve.ConflictError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &confirm):
		status = http.StatusPreconditionRequired
		body["confirmation"] = gin.H{
			"action":    confirm.Action,
			"key":       confirm.Key,
			"triple":    confirm.Triple,
			"conflicts": confirm.Conflicts,
			"prompt":    confirm.Prompt(),
		}
	case errors.As(err, &conflict):
		status = http.StatusConflict
		body["conflicts"] = conflict.Conflicts
		body["key"] = conflict.Key
	case errors.Is(err, session.ErrUnknownKey):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrActionInFlight), errors.Is(err, updates.ErrUpdateInProgress):
		status = http.StatusConflict
	case errors.Is(err, session.ErrIllegalAction):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, classify.ErrInvalidInput), errors.Is(err, resolve.ErrInvalidEntity):
		status = http.StatusBadRequest
	case errors.Is(err, resolve.ErrNotPresent):
		status = http.StatusGone
	case errors.Is(err, updates.ErrPollTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, resolve.ErrMutationFailed), errors.Is(err, classify.ErrClassificationFailed), se != nil:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "op", op, "status", status, "err", err)
	} else {
		s.Logger.Debug("request rejected", "op", op, "status", status, "err", err)
	}
	c.JSON(status, body)
}
