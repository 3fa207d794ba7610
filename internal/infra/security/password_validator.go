package security

import (
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordSymbols is the punctuation set a password must draw at least one
// character from. It matches the sign-up form's published requirements.
const PasswordSymbols = "!@#$%^&*()_+{}[]:;<>,.?~-"

const minPasswordLength = 8

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// DefaultPasswordValidator returns the validator enforcing the service
// password policy: minimum 8 characters, at least one uppercase letter, and
// at least one symbol from PasswordSymbols. The same validator gates every
// password-setting path, sign-up and recovery alike.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(minPasswordLength),
		RequireUppercaseRule(),
		RequireSymbolRule(PasswordSymbols),
	)
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireUppercaseRule ensures the password contains at least one uppercase letter.
func RequireUppercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsUpper(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "uppercase",
			Message: "password must include at least one uppercase letter",
		}
	})
}

// RequireSymbolRule ensures the password contains at least one character from
// the supplied symbol set.
func RequireSymbolRule(symbols string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if strings.ContainsAny(password, symbols) {
			return nil
		}
		return &PasswordValidationError{
			Code:    "symbol",
			Message: "password must include at least one special character",
		}
	})
}

// StrengthScore returns the zxcvbn score (0-4) for the candidate password.
// The score is advisory only; the policy rules above are the gate.
func StrengthScore(password string, userInputs ...string) int {
	return zxcvbn.PasswordStrength(password, userInputs).Score
}
