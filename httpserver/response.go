package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"filmes/errs"
	"filmes/movie"
	"filmes/pkg/sentry"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

// handleError is the router's HTTPErrorHandler. Validation failures are
// returned as an errors array, storage failures with the backend's raw
// payload, and everything unexpected as a 500 carrying the error message.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Errorw(
			err.Error(),
			zap.String("request_id", requestID(c)),
		)
		sentry.WithContext(c).Error(err)
	} else {
		s.Logger.Debugw(
			err.Error(),
			zap.String("request_id", requestID(c)),
			zap.Int("status", status),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.Logger.Errorw("write error response", zap.Error(err))
	}
}

func errorResponse(err error) (int, interface{}) {
	var verr *movie.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, errorBody{Error: msg}
		}
		return he.Code, errorBody{Error: fmt.Sprint(he.Message)}
	}

	switch errs.ErrorCode(err) {
	case errs.ESTORAGE:
		if detail := errs.ErrorDetail(err); detail != nil {
			return http.StatusBadRequest, detail
		}
		return http.StatusBadRequest, errorBody{Error: errs.ErrorMessage(err)}
	case errs.EINVALID:
		return http.StatusBadRequest, errorBody{Error: errs.ErrorMessage(err)}
	case errs.ENOTFOUND:
		return http.StatusNotFound, errorBody{Error: errs.ErrorMessage(err)}
	case errs.ECONFLICT:
		return http.StatusConflict, errorBody{Error: errs.ErrorMessage(err)}
	case errs.EUNAUTHORIZED:
		return http.StatusUnauthorized, errorBody{Error: errs.ErrorMessage(err)}
	case errs.ENOTIMPLEMENTED:
		return http.StatusNotImplemented, errorBody{Error: errs.ErrorMessage(err)}
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return http.StatusInternalServerError, errorBody{Error: appErr.Message}
	}
	return http.StatusInternalServerError, errorBody{Error: err.Error()}
}
