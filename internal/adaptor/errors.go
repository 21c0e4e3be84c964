package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"bus-booking/internal/apperr"
	"bus-booking/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// writeServiceError maps an application error kind to its HTTP status.
// Client errors are logged at warn level, everything else at error level.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("operation", operation),
		zap.String("kind", string(appErr.Kind)),
	}
	if len(appErr.Fields) > 0 {
		fields = append(fields, zap.String("fields", utils.FormatValidationErrors(appErr.Fields)))
	}
	log.Warn(operation+" failed", fields...)

	switch appErr.Kind {
	case apperr.KindValidation:
		var fields any
		if len(appErr.Fields) > 0 {
			fields = appErr.Fields
		}
		utils.ResponseBadRequest(w, appErr.Message, fields)
	case apperr.KindUnauthenticated:
		utils.ResponseUnauthorized(w, appErr.Message)
	case apperr.KindForbidden:
		utils.ResponseForbidden(w, appErr.Message)
	case apperr.KindNotFound:
		utils.ResponseNotFound(w, appErr.Message)
	case apperr.KindConflict, apperr.KindInvalidState, apperr.KindInvalidTransition:
		utils.ResponseConflict(w, appErr.Message)
	case apperr.KindPayloadMismatch:
		utils.ResponseUnprocessable(w, appErr.Message)
	default:
		log.Error("Unmapped error kind", zap.String("kind", string(appErr.Kind)))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct validator.
// It writes the 400 response itself and reports whether the handler may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, log *zap.Logger, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		writeServiceError(w, log, apperr.Validation(validationErrors, "Validation failed"), "validate request")
		return false
	}
	return true
}

func callerFrom(w http.ResponseWriter, r *http.Request) (utils.Identity, bool) {
	caller, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return caller, ok
}
