package models

// FieldError describes a validation or business rule failure tied to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UserResponse is returned by every mutation that may log a user in.
// Exactly one of Errors and User is set.
type UserResponse struct {
	Errors []FieldError `json:"errors"`
	User   *User        `json:"user"`
}

// NewFieldErrorResponse builds a response carrying a single field error.
func NewFieldErrorResponse(field, message string) *UserResponse {
	return &UserResponse{Errors: []FieldError{{Field: field, Message: message}}}
}
