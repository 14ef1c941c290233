// Package errors define el formato de error JSON de la API y los errores predefinidos.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// FromError convierte un error genérico en AppError. Los sentinels de
// repository se traducen a su status; el resto es 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, repository.ErrConflict):
		return ErrConflict.WithCause(err)
	case stderrors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta de error. Los 5xx se loguean con la causa;
// la causa nunca llega al cliente.
func WriteError(w http.ResponseWriter, err error) {
	writeError(context.Background(), w, err)
}

// WriteErrorCtx es WriteError usando el logger del request.
func WriteErrorCtx(ctx context.Context, w http.ResponseWriter, err error) {
	writeError(ctx, w, err)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= 500 {
		logger.From(ctx).Error("request failed",
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:  appErr.Message,
		Code:   appErr.Code,
		Detail: appErr.Detail,
	})
}
