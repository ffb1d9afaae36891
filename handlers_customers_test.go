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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockDB swaps the package connection for a sqlmock-backed one for the
// duration of the test.
func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	prev := db
	db = gdb
	t.Cleanup(func() {
		db = prev
		_ = sqlDB.Close()
	})
	return mock
}

func TestListCustomers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg = testConfig()
	mock := mockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "last_name", "city"}).
			AddRow(1, "Müller GmbH", "Müller", "Berlin").
			AddRow(2, "", "Schmidt", "Hamburg"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	listCustomersHandler(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Total)
	assert.Len(t, body.Items, 2)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, defaultPageSize, body.Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCustomersSearch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg = testConfig()
	mock := mockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE .*ILIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE .*ILIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/customers?search=berlin&page=2&limit=500", nil)
	listCustomersHandler(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(0), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, maxPageSize, body.Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg = testConfig()
	mock := mockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/customers/99", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	getCustomerHandler(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
