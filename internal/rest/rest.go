package rest

// ErrorResponse is the JSON body returned on handler failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
