package models

// UsernamePasswordInput represents the options of the register mutation.
// Field order defines the order in which validation errors are reported.
type UsernamePasswordInput struct {
	Email    string `json:"email" validate:"contains=@"`
	Username string `json:"username" validate:"min=3,excludes=@"`
	Password string `json:"password" validate:"min=5"`
}
