package accounts

import (
	"errors"
	"strings"
	"unicode"
)

// blockedNames are reserved words and words the parser claims for
// itself; none of them may be used as an account name.
var blockedNames = map[string]bool{
	"all": true, "everyone": true, "everybody": true, "everything": true,
	"me": true, "self": true, "myself": true, "you": true, "yourself": true,
	"it": true, "him": true, "her": true, "them": true,
	"wizard": true, "admin": true, "administrator": true, "god": true,
	"root": true, "sysop": true, "driver": true, "limbo": true,
	"reaper": true, "guest": true,
}

// ValidateName checks an account name: 3 to 16 lowercase letters, not
// a reserved word.
func ValidateName(name string) error {
	if len(name) < 3 || len(name) > 16 {
		return errors.New("Name must be between 3 and 16 letters.")
	}
	for _, r := range name {
		if r < 'a' || r > 'z' {
			return errors.New("Name must consist of lowercase letters only.")
		}
	}
	if blockedNames[name] {
		return errors.New("That name is not available.")
	}
	return nil
}

// ValidatePassword checks a password: at least 6 characters containing
// at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("Password must be at least 6 characters long.")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return errors.New("Password should contain at least one letter and one digit.")
	}
	return nil
}

// ValidateEmail checks the rough shape of an email address: a
// non-empty local part, an @, a domain with a dot, and no surrounding
// whitespace.
func ValidateEmail(email string) error {
	if email != strings.TrimSpace(email) {
		return errors.New("Email address must not contain surrounding whitespace.")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return errors.New("That is not a valid email address.")
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return errors.New("That is not a valid email address.")
	}
	return nil
}
