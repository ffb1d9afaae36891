package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kmube/models"
	"kmube/pkg/permissions"
)

func listUsersHandler(c *gin.Context) {
	p := parsePagination(c)
	q := db.Model(&models.User{})
	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("username ILIKE ? OR email ILIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondServerError(c, err, "user count failed")
		return
	}
	var users []models.User
	if err := q.Preload("Role.Permissions").Order("username").Offset(p.offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		respondServerError(c, err, "user query failed")
		return
	}
	items := make([]map[string]any, 0, len(users))
	for i := range users {
		items = append(items, sanitizeUser(&users[i]))
	}
	respondList(c, items, total, p)
}

func getUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var user models.User
	if err := db.Preload("Role.Permissions").First(&user, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, sanitizeUser(&user))
}

func createUserHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		RoleID   uint   `json:"roleId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if err := validatePassword(req.Password); err != nil {
		respondValidation(c, err)
		return
	}
	var role models.Role
	if err := db.First(&role, req.RoleID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rolle existiert nicht"})
		return
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		respondServerError(c, err, "password hashing failed")
		return
	}
	user := models.User{
		Username:          strings.TrimSpace(req.Username),
		Email:             strings.TrimSpace(req.Email),
		PasswordHash:      hashed,
		PasswordExpiresAt: clock().AddDate(1, 0, 0),
		RoleID:            role.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Benutzername oder E-Mail bereits vergeben"})
			return
		}
		respondServerError(c, err, "user create failed")
		return
	}
	user.Role = role
	c.JSON(http.StatusOK, sanitizeUser(&user))
}

func updateUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req struct {
		Email  string `json:"email"`
		RoleID *uint  `json:"roleId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.Email != "" {
		user.Email = strings.TrimSpace(req.Email)
	}
	if req.RoleID != nil {
		var role models.Role
		if err := db.First(&role, *req.RoleID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rolle existiert nicht"})
			return
		}
		user.RoleID = role.ID
	}
	if err := db.Save(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "E-Mail bereits vergeben"})
			return
		}
		respondServerError(c, err, "user update failed")
		return
	}
	db.Preload("Role.Permissions").First(&user, user.ID)
	c.JSON(http.StatusOK, sanitizeUser(&user))
}

// resetUserPasswordHandler is the administrative reset; the user's own flow
// runs through forget-password.
func resetUserPasswordHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if err := validatePassword(req.Password); err != nil {
		respondValidation(c, err)
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

func deleteUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	if claims != nil && claims.Subject == itoa(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "Eigenes Konto kann nicht gelöscht werden"})
		return
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	// unlink any employee record instead of cascading
	db.Model(&models.Employee{}).Where("user_id = ?", id).Update("user_id", nil)
	if err := db.Delete(&user).Error; err != nil {
		respondServerError(c, err, "user delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Benutzer gelöscht"})
}

func listRolesHandler(c *gin.Context) {
	var roles []models.Role
	if err := db.Preload("Permissions").Order("key").Find(&roles).Error; err != nil {
		respondServerError(c, err, "role query failed")
		return
	}
	c.JSON(http.StatusOK, roles)
}

type roleRequest struct {
	Key         string   `json:"key" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (r roleRequest) permissionRows(c *gin.Context) ([]models.Permission, bool) {
	for _, key := range r.Permissions {
		if !permissions.Known(key) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannte Berechtigung: " + key})
			return nil, false
		}
	}
	var rows []models.Permission
	if len(r.Permissions) > 0 {
		if err := db.Where("key IN ?", r.Permissions).Find(&rows).Error; err != nil {
			respondServerError(c, err, "permission query failed")
			return nil, false
		}
	}
	return rows, true
}

func createRoleHandler(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	rows, ok := req.permissionRows(c)
	if !ok {
		return
	}
	role := models.Role{
		Key:         strings.ToLower(strings.TrimSpace(req.Key)),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Permissions: rows,
	}
	if err := db.Create(&role).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Rollenschlüssel bereits vergeben"})
			return
		}
		respondServerError(c, err, "role create failed")
		return
	}
	c.JSON(http.StatusOK, role)
}

func updateRoleHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var role models.Role
	if err := db.First(&role, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	// the admin role key and its full permission set are fixed
	if role.Key == "admin" {
		c.JSON(http.StatusConflict, gin.H{"error": "Administratorrolle kann nicht bearbeitet werden"})
		return
	}
	rows, ok := req.permissionRows(c)
	if !ok {
		return
	}
	role.Name = strings.TrimSpace(req.Name)
	role.Description = req.Description
	if err := db.Save(&role).Error; err != nil {
		respondServerError(c, err, "role update failed")
		return
	}
	if err := db.Model(&role).Association("Permissions").Replace(rows); err != nil {
		respondServerError(c, err, "role permission update failed")
		return
	}
	db.Preload("Permissions").First(&role, role.ID)
	c.JSON(http.StatusOK, role)
}

func deleteRoleHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var role models.Role
	if err := db.First(&role, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	if role.Key == "admin" {
		c.JSON(http.StatusConflict, gin.H{"error": "Administratorrolle kann nicht gelöscht werden"})
		return
	}
	var userCount int64
	db.Model(&models.User{}).Where("role_id = ?", id).Count(&userCount)
	if userCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Rolle ist Benutzern zugewiesen"})
		return
	}
	if err := db.Select("Permissions").Delete(&role).Error; err != nil {
		respondServerError(c, err, "role delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rolle gelöscht"})
}
