package restapi

import (
	"encoding/json"
	"net/http"

	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/models"
)

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if api.Logger != nil {
		logging.LogError(api.Logger, "request failed", err)
	}

	response := models.ResponseModel{
		Code:        http.StatusInternalServerError,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		Text:        "internal server error",
		Version:     1,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil && api.Logger != nil {
		api.Logger.Error("failed to encode server error response", "error", encodeErr)
	}
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil && api.Logger != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}
