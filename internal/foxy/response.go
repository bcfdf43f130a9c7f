package foxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Body is the JSON envelope Foxy expects from every webhook handler. A
// business-rule rejection is a 200 with ok=false; non-200 statuses are
// reserved for transport and configuration failures.
type Body struct {
	Details string `json:"details"`
	OK      bool   `json:"ok"`
}

// Response is an HTTP status plus the Foxy response envelope.
type Response struct {
	StatusCode int
	Body       Body
}

// NewResponse builds a webhook response. OK is true exactly when details is
// empty. An error status with no details would be silently meaningless to
// the operator, so constructing one fails.
func NewResponse(details string, code int) (Response, error) {
	if code != http.StatusOK && strings.TrimSpace(details) == "" {
		return Response{}, errors.New("an error response needs to specify details")
	}
	return Response{
		StatusCode: code,
		Body: Body{
			Details: details,
			OK:      details == "",
		},
	}, nil
}

// Accept is the 200 {ok:true} response for an approved payment.
func Accept() Response {
	return Response{StatusCode: http.StatusOK, Body: Body{OK: true}}
}

// Reject is a 200 {ok:false} response for a business-rule rejection.
func Reject(details string) Response {
	return Response{StatusCode: http.StatusOK, Body: Body{Details: details}}
}

// Write serializes the response onto w.
func (r Response) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)
	return json.NewEncoder(w).Encode(r.Body)
}
