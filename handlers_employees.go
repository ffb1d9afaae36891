package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

type employeeRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	HiredAt   string `json:"hiredAt"` // ISO date, optional
	UserID    *uint  `json:"userId"`
}

func (r employeeRequest) apply(emp *models.Employee) error {
	emp.FirstName = strings.TrimSpace(r.FirstName)
	emp.LastName = strings.TrimSpace(r.LastName)
	emp.Email = strings.TrimSpace(r.Email)
	emp.Phone = strings.TrimSpace(r.Phone)
	emp.Position = strings.TrimSpace(r.Position)
	emp.UserID = r.UserID
	if r.HiredAt != "" {
		t, err := time.Parse("2006-01-02", r.HiredAt)
		if err != nil {
			return err
		}
		emp.HiredAt = &t
	}
	return nil
}

func listEmployeesHandler(c *gin.Context) {
	p := parsePagination(c)
	q := db.Model(&models.Employee{})
	if p.Search != "" {
		like := "%" + p.Search + "%"
		q = q.Where("first_name ILIKE ? OR last_name ILIKE ? OR position ILIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondServerError(c, err, "employee count failed")
		return
	}
	var items []models.Employee
	if err := q.Order("last_name, first_name").Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		respondServerError(c, err, "employee query failed")
		return
	}
	respondList(c, items, total, p)
}

func getEmployeeHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var emp models.Employee
	if err := db.First(&emp, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, emp)
}

func createEmployeeHandler(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	var emp models.Employee
	if err := req.apply(&emp); err != nil {
		respondValidation(c, err)
		return
	}
	if err := db.Create(&emp).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Benutzerkonto ist bereits einem Mitarbeiter zugeordnet"})
			return
		}
		respondServerError(c, err, "employee create failed")
		return
	}
	c.JSON(http.StatusOK, emp)
}

func updateEmployeeHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var emp models.Employee
	if err := db.First(&emp, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if err := req.apply(&emp); err != nil {
		respondValidation(c, err)
		return
	}
	if err := db.Save(&emp).Error; err != nil {
		respondServerError(c, err, "employee update failed")
		return
	}
	c.JSON(http.StatusOK, emp)
}

func deleteEmployeeHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var emp models.Employee
	if err := db.First(&emp, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	if err := db.Delete(&emp).Error; err != nil {
		respondServerError(c, err, "employee delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mitarbeiter gelöscht"})
}
