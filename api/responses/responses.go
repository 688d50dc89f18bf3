package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
	"github.com/gymstackhq/gymstack-backend/pkg/types"
)

// WriteSuccess writes a 200 envelope carrying data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

// WriteSuccessStatus writes a success envelope with an explicit status.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.Envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.Envelope{Success: true, Message: message})
}

// WriteRejected writes a non-success envelope on a 200, for requests
// that were understood but changed nothing.
func WriteRejected(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, types.Envelope{Success: false, Message: message, Data: data})
}

// WriteError normalizes any error into the envelope. Internal errors
// keep their generic public message; the real chain goes to the log.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.Envelope{Success: false, Message: msg}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Data = details
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code": string(typed.Code()),
			"status":     meta.HTTPStatus,
		})
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// WriteCSV sets attachment headers and hands the writer to fill. A fill
// failure after headers are sent can only be logged.
func WriteCSV(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, filename string, fill func(w http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := fill(w); err != nil && logg != nil {
		logg.Error(ctx, "csv.write_failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
