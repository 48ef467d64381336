package pkg

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is lowered in tests, bcrypt at 12 takes a few hundred ms.
var PasswordHashCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = fmt.Errorf("password must not be longer than %d bytes", MaxPasswordBytes)

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return BytesToString(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// PasswordHashOutdated reports whether hash was made with a cost other than
// PasswordHashCost, or is not a bcrypt hash at all.
func PasswordHashOutdated(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if errors.Is(err, bcrypt.ErrHashTooShort) {
		return true
	}
	return err != nil || cost != PasswordHashCost
}
