package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kmube/models"
)

func listCategoriesHandler(c *gin.Context) {
	var items []models.Category
	if err := db.Order("name").Find(&items).Error; err != nil {
		respondServerError(c, err, "category query failed")
		return
	}
	c.JSON(http.StatusOK, items)
}

type categoryNode struct {
	models.Category
	Nodes []*categoryNode `json:"children"`
}

// categoryTreeHandler returns the full tree nested from the roots.
func categoryTreeHandler(c *gin.Context) {
	var items []models.Category
	if err := db.Order("name").Find(&items).Error; err != nil {
		respondServerError(c, err, "category query failed")
		return
	}
	byID := make(map[uint]*categoryNode, len(items))
	for i := range items {
		byID[items[i].ID] = &categoryNode{Category: items[i], Nodes: []*categoryNode{}}
	}
	// attach in slice order so siblings keep the name sort of the query
	var roots []*categoryNode
	for i := range items {
		node := byID[items[i].ID]
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*node.ParentID]
		if !ok {
			// orphan (parent deleted out-of-band); surface as root
			roots = append(roots, node)
			continue
		}
		parent.Nodes = append(parent.Nodes, node)
	}
	c.JSON(http.StatusOK, roots)
}

// collectDescendants returns id plus every transitive child id. Used to
// filter products by a category subtree.
func collectDescendants(id uint) ([]uint, error) {
	var all []models.Category
	if err := db.Select("id", "parent_id").Find(&all).Error; err != nil {
		return nil, err
	}
	children := make(map[uint][]uint)
	for _, cat := range all {
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat.ID)
		}
	}
	result := []uint{id}
	queue := []uint{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result, nil
}

type categoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parentId"`
}

func createCategoryHandler(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.ParentID != nil {
		var parent models.Category
		if err := db.First(&parent, *req.ParentID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Übergeordnete Kategorie existiert nicht"})
			return
		}
	}
	cat := models.Category{Name: strings.TrimSpace(req.Name), ParentID: req.ParentID}
	if err := db.Create(&cat).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Kategorie existiert bereits"})
			return
		}
		respondServerError(c, err, "category create failed")
		return
	}
	c.JSON(http.StatusOK, cat)
}

func updateCategoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var cat models.Category
	if err := db.First(&cat, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	// a category may not be moved under itself or one of its descendants
	if req.ParentID != nil {
		descendants, err := collectDescendants(cat.ID)
		if err != nil {
			respondServerError(c, err, "category traversal failed")
			return
		}
		for _, d := range descendants {
			if d == *req.ParentID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Kategorie kann nicht unter sich selbst verschoben werden"})
				return
			}
		}
	}
	cat.Name = strings.TrimSpace(req.Name)
	cat.ParentID = req.ParentID
	if err := db.Save(&cat).Error; err != nil {
		respondServerError(c, err, "category update failed")
		return
	}
	c.JSON(http.StatusOK, cat)
}

func deleteCategoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var cat models.Category
	if err := db.First(&cat, id).Error; err != nil {
		respondNotFound(c)
		return
	}
	var childCount int64
	db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount)
	if childCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Kategorie hat Unterkategorien"})
		return
	}
	var productCount int64
	db.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Kategorie enthält Produkte"})
		return
	}
	if err := db.Delete(&cat).Error; err != nil {
		respondServerError(c, err, "category delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kategorie gelöscht"})
}
