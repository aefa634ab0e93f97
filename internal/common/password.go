package common

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCredential turns a raw password into the credential handed to
// CreateUser. The storage layer itself treats credentials as opaque.
func HashCredential(raw string) (string, error) {
	if err := ValidateCredential(raw); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyCredential(credential, raw string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(raw)); err != nil {
		return NewValidationError("credential", "does not match")
	}
	return nil
}

// IsHashedCredential is false for credentials stored in plaintext by
// older deployments.
func IsHashedCredential(credential string) bool {
	_, err := bcrypt.Cost([]byte(credential))
	return err == nil
}
