package domain

import "strings"

// IdentifierKind distinguishes the two login key shapes users may supply.
type IdentifierKind string

const (
	IdentifierEmail  IdentifierKind = "email"
	IdentifierMobile IdentifierKind = "mobile"
)

// Identifier is a user-supplied login key, either an email address or a
// mobile number. It is distinct from the account's canonical username.
type Identifier struct {
	Raw  string
	Kind IdentifierKind
}

// ClassifyIdentifier decides whether the supplied string denotes an email
// address or a mobile number. The rule mirrors the sign-up form: anything
// containing '@' is an email, everything else is a mobile number. Malformed
// values are passed through unchanged; the backend is the source of truth.
func ClassifyIdentifier(raw string) Identifier {
	if strings.Contains(raw, "@") {
		return Identifier{Raw: raw, Kind: IdentifierEmail}
	}
	return Identifier{Raw: raw, Kind: IdentifierMobile}
}

// IsEmail reports whether the identifier was classified as an email address.
func (i Identifier) IsEmail() bool {
	return i.Kind == IdentifierEmail
}

// LookupValue returns the value to compare against the backend field for this
// kind. Emails are case-normalized to lowercase; mobile numbers match exactly.
func (i Identifier) LookupValue() string {
	if i.IsEmail() {
		return strings.ToLower(i.Raw)
	}
	return i.Raw
}
