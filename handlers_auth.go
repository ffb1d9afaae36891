package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kmube/models"
)

// csrfHandler issues the double-submit token pair: the token goes into an
// httpOnly cookie and is also returned in the body so the client can echo it
// in the X-XSRF-TOKEN header.
func csrfHandler(c *gin.Context) {
	token, err := issueCSRFToken()
	if err != nil {
		respondServerError(c, err, "csrf token generation failed")
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(csrfCookie, token, int(cfg.CSRFTTL.Seconds()), "/", "", cfg.isProduction(), true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	user, err := authenticate(req.Username, req.Password)
	if err != nil {
		// expired-password and bad-credential cases differ only in the log
		if errors.Is(err, errPasswordExpired) {
			log.Warn().Str("username", req.Username).Msg("login rejected: password expired")
		} else {
			log.Warn().Str("username", req.Username).Str("ip", clientIP(c)).Msg("login rejected: invalid credentials")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}

	now := clock()
	if err := db.Model(user).Update("last_login_at", now).Error; err != nil {
		log.Warn().Err(err).Msg("failed to update last login")
	}
	user.LastLoginAt = &now

	perms := permissionKeys(user.Role)
	access, err := signAccessToken(user, perms)
	if err != nil {
		respondServerError(c, err, "access token signing failed")
		return
	}
	refresh, err := signRefreshToken(user)
	if err != nil {
		respondServerError(c, err, "refresh token signing failed")
		return
	}
	setAccessCookie(c, access)
	setRefreshCookie(c, refresh)
	c.JSON(http.StatusOK, gin.H{"user": sanitizeUser(user)})
}

// meHandler is the session check: a valid access token returns the user, an
// expired one is silently renewed via the refresh cookie, and anything else
// is a clean 401 without a user object.
func meHandler(c *gin.Context) {
	claims, renewed, err := authenticateRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	userID, err := atoiID(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	var user models.User
	if err := db.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	if renewed != "" {
		setAccessCookie(c, renewed)
	}
	c.JSON(http.StatusOK, gin.H{"user": sanitizeUser(&user)})
}

// refreshHandler mints a new access token from the refresh cookie alone.
func refreshHandler(c *gin.Context) {
	refreshString, err := c.Cookie(refreshCookie)
	if err != nil || refreshString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	claims, err := parseRefreshToken(refreshString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	userID, err := atoiID(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	var user models.User
	if err := db.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	access, err := signAccessToken(&user, permissionKeys(user.Role))
	if err != nil {
		respondServerError(c, err, "access token signing failed")
		return
	}
	setAccessCookie(c, access)
	c.JSON(http.StatusOK, gin.H{"message": "token refreshed"})
}

func logoutHandler(c *gin.Context) {
	clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func verifyTokenHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	if _, err := parseAccessToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// forgetPasswordEmailHandler always answers 200 to avoid leaking which
// addresses exist; the mail is only sent when the address matches a user.
func forgetPasswordEmailHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	var user models.User
	if err := db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err == nil {
		token, err := signResetToken(&user)
		if err != nil {
			respondServerError(c, err, "reset token signing failed")
			return
		}
		go sendPasswordResetMail(user.Email, token)
	} else {
		log.Info().Str("email", req.Email).Msg("password reset requested for unknown email")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wenn die E-Mail-Adresse existiert, wurde eine Nachricht versendet."})
}

func forgetPasswordNewPasswordHandler(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	claims, err := parseResetToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	if err := validatePassword(req.Password); err != nil {
		respondValidation(c, err)
		return
	}
	userID, err := atoiID(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgAuthFailed})
		return
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		respondServerError(c, err, "password hashing failed")
		return
	}
	updates := map[string]any{
		"password_hash":       hashed,
		"password_expires_at": clock().AddDate(1, 0, 0),
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		respondServerError(c, err, "password update failed")
		return
	}
	go sendPasswordChangedMail(user.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Passwort aktualisiert"})
}
