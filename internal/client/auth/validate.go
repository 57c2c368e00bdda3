package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/common"
)

const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

var ErrValidation = common.ErrValidation

// FieldErrors maps a form field to its message. It matches ErrValidation
// with errors.Is.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

func minLengthMessage() string {
	return fmt.Sprintf("Min %d characters required", common.MinPasswordLength)
}

// Validate checks creds for mode. A nil result means the form may be
// submitted. The confirmation is checked for presence and length only; it is
// not compared with the password.
func Validate(mode models.AuthMode, creds models.Credentials) FieldErrors {
	fe := FieldErrors{}

	if strings.TrimSpace(creds.Username) == "" {
		fe[FieldUsername] = "Username is required"
	}

	switch {
	case creds.Password == "":
		fe[FieldPassword] = "Password is required"
	case utf8.RuneCountInString(creds.Password) < common.MinPasswordLength:
		fe[FieldPassword] = minLengthMessage()
	}

	if mode == models.AuthModeRegister {
		switch {
		case creds.ConfirmPassword == "":
			fe[FieldConfirmPassword] = "Confirm Password is required"
		case utf8.RuneCountInString(creds.ConfirmPassword) < common.MinPasswordLength:
			fe[FieldConfirmPassword] = minLengthMessage()
		}
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
