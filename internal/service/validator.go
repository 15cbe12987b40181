package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wavythought/relay/internal/entity"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims the free-text fields of s.
func Normalize(s entity.Submission) entity.Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)

	return s
}

// ValidateSubmission expects a normalized submission.
func ValidateSubmission(s entity.Submission) error {
	err := validate.Struct(s)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}

			return fmt.Errorf("%w: missing %s", entity.ErrIncompleteSubmission, strings.Join(fields, ", "))
		}

		return err
	}

	return nil
}

func ValidateEmail(email string) error {
	err := validate.Var(email, "email")
	if err != nil {
		return entity.ErrInvalidEmail
	}

	return nil
}
