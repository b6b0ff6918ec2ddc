package services

import (
	"fmt"

	chat_errors "pocketchat/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateEmail(email string) error {
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("%w: invalid email format", chat_errors.ErrInvalidInput)
	}
	return nil
}

func validateURL(raw string) error {
	if err := validate.Var(raw, "url"); err != nil {
		return fmt.Errorf("%w: invalid media URL", chat_errors.ErrInvalidInput)
	}
	return nil
}
