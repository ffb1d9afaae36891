package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"kmube/models"
)

// clock is swapped out in tests.
var clock = time.Now

// Authentication failures are distinguished internally (logging) but clients
// always receive the same generic message to avoid account enumeration.
var (
	errInvalidCredentials = errors.New("invalid credentials")
	errPasswordExpired    = errors.New("password expired")
)

// authenticate verifies username and password and checks password expiry.
// The returned user has Role and its Permissions preloaded.
func authenticate(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Preload("Role.Permissions").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if clock().After(user.PasswordExpiresAt) {
		return nil, errPasswordExpired
	}
	return &user, nil
}

// permissionKeys materializes the role's permission set for the token
// snapshot.
func permissionKeys(role models.Role) []string {
	keys := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		keys = append(keys, p.Key)
	}
	return keys
}

func hashPassword(pw string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
}

// validatePassword enforces the password policy: at least 8 characters with
// an upper-case letter, a lower-case letter and a digit.
func validatePassword(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("Passwort zu kurz (mindestens 8 Zeichen)")
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("Passwort benötigt Groß- und Kleinbuchstaben sowie eine Ziffer")
	}
	return nil
}

// sanitizeUser is the JSON shape returned to clients; the hash never leaves
// the server.
func sanitizeUser(user *models.User) map[string]any {
	return map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role": map[string]any{
			"key":  user.Role.Key,
			"name": user.Role.Name,
		},
		"permissions": permissionKeys(user.Role),
		"lastLoginAt": user.LastLoginAt,
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func atoiID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
