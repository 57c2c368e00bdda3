package models

// AuthMode selects which credential endpoint the auth form submits to.
type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

// Toggle returns the other mode.
func (m AuthMode) Toggle() AuthMode {
	if m == AuthModeRegister {
		return AuthModeLogin
	}
	return AuthModeRegister
}

// Credentials are the auth form fields. ConfirmPassword is only sent in
// register mode.
type Credentials struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}
