// Package identity synthesizes the display identity returned by login.
//
// There is no credential check here: any Gmail-shaped address is accepted
// and the password is ignored. This is placeholder behaviour carried over
// from the demo server, not an authentication scheme. Replacing it with a
// real credential-and-hash step is a product decision outside this package.
package identity

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GmailSuffix is the only accepted email domain.
const GmailSuffix = "@gmail.com"

// fallbackName is used when the local part is empty.
const fallbackName = "User"

// ErrInvalidCredentials is returned for any non-Gmail address.
var ErrInvalidCredentials = errors.New("please use a Gmail address")

// User is the identity handed back to the client after login.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsGmail reports whether the normalized address ends in @gmail.com.
func IsGmail(email string) bool {
	return strings.HasSuffix(NormalizeEmail(email), GmailSuffix)
}

// DisplayName derives a name from the local part of an address:
// dots and underscores become spaces and every word character that follows
// a non-word character is upper-cased. Word characters are ASCII letters,
// digits and underscore, so "2006vishnu" stays as is and "o'brien" becomes
// "O'Brien".
// PRE: none
// POST: "jane.doe@gmail.com" -> "Jane Doe"; empty local part -> "User"
func DisplayName(email string) string {
	local, _, _ := strings.Cut(NormalizeEmail(email), "@")
	if local == "" {
		return fallbackName
	}
	spaced := strings.NewReplacer(".", " ", "_", " ").Replace(local)

	// Casers are stateful; build one per call.
	upper := cases.Upper(language.English)
	var b strings.Builder
	b.Grow(len(spaced))
	inWord := false
	for _, r := range spaced {
		word := isWordRune(r)
		if word && !inWord {
			b.WriteString(upper.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		inWord = word
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
