package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kmube/models"
	"kmube/pkg/permissions"
)

// Client-facing messages. Auth failures are deliberately generic (no account
// enumeration); detail goes to the log only.
const (
	msgAuthFailed  = "Ungültige Anmeldeinformationen"
	msgTooMany     = "Zu viele Anfragen"
	msgNotFound    = "Nicht gefunden"
	msgServerError = "Interner Serverfehler"
)

const claimsKey = "accessClaims"

// limiter is assigned once at startup, before the server accepts requests;
// request handlers only ever read it.
var limiter *ipLimiter

// mutationGuard enforces, in order, rate limiting then CSRF verification.
// Every state-changing route runs through it; the one exception is
// /api/auth/refresh, which skips CSRF because its httpOnly, path-scoped
// refresh cookie already bounds who can call it.
func mutationGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitAllow(c) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooMany})
			return
		}
		if !verifyCSRF(c) {
			log.Warn().Str("ip", clientIP(c)).Str("path", c.Request.URL.Path).Msg("csrf verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
			return
		}
		c.Next()
	}
}

// rateLimitGuard applies rate limiting without CSRF (refresh endpoint).
func rateLimitGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitAllow(c) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooMany})
			return
		}
		c.Next()
	}
}

func rateLimitAllow(c *gin.Context) bool {
	// enforced only in production; a dev convenience that must not be
	// widened further
	if !cfg.isProduction() || limiter == nil {
		return true
	}
	ip := clientIP(c)
	if limiter.allow(ip) {
		return true
	}
	log.Warn().Str("ip", ip).Str("path", c.Request.URL.Path).Msg("rate limit exceeded")
	return false
}

// requireAuth validates the access-token cookie. An expired access token with
// a still-valid refresh cookie is silently renewed; any other failure is 401.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, renewed, err := authenticateRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
			return
		}
		if renewed != "" {
			setAccessCookie(c, renewed)
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// authenticateRequest implements the token check policy shared by the
// middleware and the session-check handler: (a) valid access token wins,
// (b) expired or absent access falls back to the refresh cookie and mints a
// new access token, (c) anything else fails. The minted token (if any) is
// returned so the caller can set the cookie.
func authenticateRequest(c *gin.Context) (*AccessClaims, string, error) {
	tokenString, err := c.Cookie(accessCookie)
	if err == nil && tokenString != "" {
		claims, perr := parseAccessToken(tokenString)
		if perr == nil {
			return claims, "", nil
		}
		if !errors.Is(perr, errTokenExpired) {
			return nil, "", perr
		}
		// expired: fall through to refresh
	}

	refreshString, err := c.Cookie(refreshCookie)
	if err != nil || refreshString == "" {
		return nil, "", errInvalidCredentials
	}
	refreshClaims, err := parseRefreshToken(refreshString)
	if err != nil {
		return nil, "", errInvalidCredentials
	}
	userID, err := atoiID(refreshClaims.Subject)
	if err != nil {
		return nil, "", errInvalidCredentials
	}
	var user models.User
	if err := db.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
		return nil, "", errInvalidCredentials
	}
	access, err := signAccessToken(&user, permissionKeys(user.Role))
	if err != nil {
		return nil, "", err
	}
	claims, err := parseAccessToken(access)
	if err != nil {
		return nil, "", err
	}
	return claims, access, nil
}

// requirePermissions gates a route on the access token's permission snapshot.
// Denials surface as 404 so unauthorized callers cannot map the API.
func requirePermissions(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil || !permissions.HasAll(claims.Permissions, required) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgNotFound})
			return
		}
		c.Next()
	}
}

func claimsFromContext(c *gin.Context) *AccessClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*AccessClaims)
	if !ok {
		return nil
	}
	return claims
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("ip", clientIP(c)).
			Msg("request")
	}
}
