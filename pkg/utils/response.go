package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// APIResponse is the success envelope.
type APIResponse struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	if data == nil {
		data = struct{}{}
	}
	WriteJSON(w, status, APIResponse{Status: status, Data: data, Message: message, Success: true})
}

// WriteError converts err to the failure envelope. Errors outside the APIError
// taxonomy are logged and reported as a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		log.Printf("ERROR: unhandled error: %v", err)
		apiErr = NewInternalError("Something went wrong", err)
	} else if apiErr.Kind == KindInternal {
		log.Printf("ERROR: %v", apiErr)
	}
	WriteJSON(w, apiErr.Status, ErrorResponse{Status: apiErr.Status, Message: apiErr.Message, Success: false})
}
