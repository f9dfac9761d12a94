package responses

// ErrorResponse is the body of every failed request. Code is a stable identifier for the
// failure site, Error is the human readable message.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
