package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"kmube/models"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
	csrfCookie    = "XSRF-TOKEN"
	legacyCookie  = "auth" // historic boolean flag, only ever cleared

	refreshCookiePath = "/api/auth"

	purposeReset = "password_reset"
)

var errTokenExpired = errors.New("token expired")

// AccessClaims carry the permission snapshot taken at issue time. The
// snapshot stays valid for the token lifetime even if the role changes;
// refresh or re-login picks the change up.
type AccessClaims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the subject only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// ResetClaims authorize a single password reset; Purpose guards against an
// access or refresh token being replayed into the reset endpoint.
type ResetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func signAccessToken(user *models.User, perms []string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username:    user.Username,
		Role:        user.Role.Key,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.AccessSecret)
}

func signRefreshToken(user *models.User) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.RefreshSecret)
}

func signResetToken(user *models.User) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		Purpose: purposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ResetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.AccessSecret)
}

// parseAccessToken returns errTokenExpired for expired-but-otherwise-valid
// tokens so callers can attempt a refresh; any other failure is terminal.
func parseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return cfg.AccessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func parseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return cfg.RefreshSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func parseResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return cfg.AccessSecret, nil
	})
	if err != nil || !token.Valid || claims.Purpose != purposeReset {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func setAccessCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookie, token, int(cfg.AccessTTL.Seconds()), "/", "", cfg.isProduction(), true)
}

func setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	// path-scoped so only the auth endpoints ever receive it
	c.SetCookie(refreshCookie, token, int(cfg.RefreshTTL.Seconds()), refreshCookiePath, "", cfg.isProduction(), true)
}

// clearAuthCookies removes both tokens and the legacy auth flag regardless of
// their current validity.
func clearAuthCookies(c *gin.Context) {
	c.SetCookie(accessCookie, "", -1, "/", "", cfg.isProduction(), true)
	c.SetCookie(refreshCookie, "", -1, refreshCookiePath, "", cfg.isProduction(), true)
	c.SetCookie(legacyCookie, "", -1, "/", "", cfg.isProduction(), false)
}
