package api

import (
	"encoding/json"
	"net/http"
)

// Error codes of the JSON protocol.
const (
	codeInvalidArgument = "invalidArgument"
	codeInvalidToken    = "invalidToken"
	codeUnknownToken    = "unknownToken"
	codeMapNotFound     = "mapNotFound"
	codeInvalidMethod   = "invalidMethod"
	codeInternalError   = "internalError"
)

// apiError is a request-scoped failure rendered as the standard
// {"code","message"} body.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func errBadRequest(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: codeInvalidArgument, Message: message}
}

func errInvalidToken() *apiError {
	return &apiError{Status: http.StatusUnauthorized, Code: codeInvalidToken, Message: "Authorization header is missing or malformed"}
}

func errUnknownToken() *apiError {
	return &apiError{Status: http.StatusUnauthorized, Code: codeUnknownToken, Message: "Player token has not been found"}
}

func errMapNotFound() *apiError {
	return &apiError{Status: http.StatusNotFound, Code: codeMapNotFound, Message: "Map not found"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e *apiError) {
	writeJSON(w, e.Status, map[string]string{
		"code":    e.Code,
		"message": e.Message,
	})
}
