package service

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var slotIDRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxSlotIDLength   = 64
	maxNameLength     = 80
	maxSecretLength   = 128
	maxCaptionLength  = 200
	maxAuthorLength   = 80
	maxLocationLength = 120
)

// Slot ids double as filenames on the upload side channel, so the charset is
// restricted to lowercase kebab.
func ValidateSlotID(id string) error {
	if id == "" {
		return errors.New("slot id is required")
	}
	if len(id) > maxSlotIDLength {
		return errors.New("slot id too long")
	}
	if !slotIDRegex.MatchString(id) {
		return errors.New("slot id may only contain lowercase letters, digits and dashes")
	}
	return nil
}

func ValidateSecret(secret string) error {
	if len(secret) < 4 {
		return errors.New("secret must be at least 4 characters")
	}
	if len(secret) > maxSecretLength {
		return errors.New("secret too long")
	}
	return nil
}

func ValidatePassFields(name, email, secret string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.New("name too long")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email address")
	}
	return ValidateSecret(secret)
}

func ValidateMomentMeta(caption, author, location string) error {
	if utf8.RuneCountInString(caption) > maxCaptionLength {
		return errors.New("caption too long")
	}
	if utf8.RuneCountInString(author) > maxAuthorLength {
		return errors.New("author too long")
	}
	if utf8.RuneCountInString(location) > maxLocationLength {
		return errors.New("location too long")
	}
	return nil
}
