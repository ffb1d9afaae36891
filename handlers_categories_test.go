package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Siblings must come out in the name order of the underlying query, at every
// level of the tree.
func TestCategoryTreeSiblingOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg = testConfig()
	mock := mockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "parent_id"}).
			AddRow(3, "Büro", nil).
			AddRow(2, "Lager", nil).
			AddRow(5, "Möbel", 3).
			AddRow(4, "Stühle", 3))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil)
	categoryTreeHandler(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var roots []categoryNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roots))

	require.Len(t, roots, 2)
	assert.Equal(t, "Büro", roots[0].Name)
	assert.Equal(t, "Lager", roots[1].Name)

	require.Len(t, roots[0].Nodes, 2)
	assert.Equal(t, "Möbel", roots[0].Nodes[0].Name)
	assert.Equal(t, "Stühle", roots[0].Nodes[1].Name)
	assert.Empty(t, roots[1].Nodes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectDescendants(t *testing.T) {
	cfg = testConfig()
	mock := mockDB(t)

	mock.ExpectQuery(`SELECT "id","parent_id" FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id"}).
			AddRow(1, nil).
			AddRow(2, 1).
			AddRow(3, 2).
			AddRow(4, nil))

	ids, err := collectDescendants(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)
}
