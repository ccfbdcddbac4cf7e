package wctx

import (
	"encoding/json"
	"net/http"

	"github.com/gertd/go-pluralize"
)

var pluralizer = pluralize.NewClient()

// SuccessResponse defines the envelope for successful responses.
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

// ErrorPayload defines the internal structure of the error object.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse defines the envelope for error responses.
type ErrorResponse struct {
	Error ErrorPayload `json:"error"`
}

// RespondSuccess sends a successful JSON response.
func RespondSuccess(w http.ResponseWriter, data interface{}) {
	Respond(w, http.StatusOK, data, nil)
}

// Respond sends a JSON response with an explicit status code and optional
// meta block.
func Respond(w http.ResponseWriter, code int, data interface{}, meta interface{}) {
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(SuccessResponse{Data: data, Meta: meta})
}

// RespondError sends an error payload that mirrors the success envelope.
func RespondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorPayload{
			Code:    http.StatusText(code),
			Message: message,
		},
	})
}

// RespondCollection responds with the items keyed by the plural form of the
// resource type, plus a count in the meta block.
func RespondCollection(w http.ResponseWriter, resourceType string, items interface{}, count int) {
	Respond(w, http.StatusOK,
		map[string]interface{}{Pluralize(resourceType): items},
		map[string]interface{}{"count": count},
	)
}

// Pluralize converts a singular resource type into its plural form.
func Pluralize(singular string) string {
	return pluralizer.Plural(singular)
}

// Singularize converts a plural resource type into its singular form.
func Singularize(plural string) string {
	return pluralizer.Singular(plural)
}
