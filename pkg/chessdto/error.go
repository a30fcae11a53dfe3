package chessdto

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}
