package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dan47bennett/typescript-reddit/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(useJSONTagNames)
	return v
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// fieldMessages maps "<json field>.<validation tag>" to the message shown to users.
var fieldMessages = map[string]string{
	"email.contains":    "Invalid email",
	"username.min":      "Username length must be greater than 2",
	"username.excludes": `Username cannot include "@"`,
	"password.min":      "Password length must be greater than 4",
	"newPassword.min":   "Password length must be greater than 4",
}

type newPasswordInput struct {
	NewPassword string `json:"newPassword" validate:"min=5"`
}

// fieldErrors validates s and returns one field error per failing field,
// in declaration order. A nil slice means s is valid.
func fieldErrors(s any) ([]models.FieldError, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out = append(out, models.FieldError{Field: fe.Field(), Message: msg})
	}
	return out, nil
}
