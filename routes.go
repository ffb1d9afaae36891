package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kmube/pkg/permissions"
)

// setupRoutes wires the full API surface. Guard order on protected mutations
// is fixed: rate limiting and CSRF run before any token parsing or database
// work, so a throttled or forged request is rejected without touching either.
func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", metricsHandler())

	api := r.Group("/api")
	api.GET("/csrf", csrfHandler)

	auth := api.Group("/auth")
	auth.POST("/login", mutationGuard(), loginHandler)
	auth.GET("/me", meHandler)
	// refresh deliberately skips CSRF: the refresh cookie is httpOnly and
	// path-scoped to /api/auth, which bounds this flow on its own
	auth.POST("/refresh", rateLimitGuard(), refreshHandler)
	auth.POST("/logout", mutationGuard(), logoutHandler)
	auth.GET("/verify-token", verifyTokenHandler)
	auth.POST("/forget-password/email", mutationGuard(), forgetPasswordEmailHandler)
	auth.PATCH("/forget-password/new-password", mutationGuard(), forgetPasswordNewPasswordHandler)

	// document generation; unauthenticated like the rest of the read-only
	// generation surface
	api.POST("/pdf", pdfHandler)

	sec := api.Group("")
	authn := requireAuth()

	customers := sec.Group("/customers")
	customers.GET("", authn, requirePermissions(permissions.ViewCustomers), listCustomersHandler)
	customers.GET("/:id", authn, requirePermissions(permissions.ViewCustomers), getCustomerHandler)
	customers.POST("", mutationGuard(), authn, requirePermissions(permissions.CreateCustomers), createCustomerHandler)
	customers.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.EditCustomers), updateCustomerHandler)
	customers.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.DeleteCustomers), deleteCustomerHandler)

	products := sec.Group("/products")
	products.GET("", authn, requirePermissions(permissions.ViewProducts), listProductsHandler)
	products.GET("/:id", authn, requirePermissions(permissions.ViewProducts), getProductHandler)
	products.POST("", mutationGuard(), authn, requirePermissions(permissions.CreateProducts), createProductHandler)
	products.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.EditProducts), updateProductHandler)
	products.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.DeleteProducts), deleteProductHandler)
	products.POST("/:id/image", mutationGuard(), authn, requirePermissions(permissions.EditProducts), uploadProductImageHandler)

	categories := sec.Group("/categories")
	categories.GET("", authn, requirePermissions(permissions.ViewCategories), listCategoriesHandler)
	categories.GET("/tree", authn, requirePermissions(permissions.ViewCategories), categoryTreeHandler)
	categories.POST("", mutationGuard(), authn, requirePermissions(permissions.CreateCategories), createCategoryHandler)
	categories.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.EditCategories), updateCategoryHandler)
	categories.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.DeleteCategories), deleteCategoryHandler)

	offers := sec.Group("/offers")
	offers.GET("", authn, requirePermissions(permissions.ViewOffers), listOffersHandler)
	offers.GET("/:id", authn, requirePermissions(permissions.ViewOffers), getOfferHandler)
	offers.POST("", mutationGuard(), authn, requirePermissions(permissions.CreateOffers), createOfferHandler)
	offers.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.EditOffers), updateOfferHandler)
	offers.PATCH("/:id/status", mutationGuard(), authn, requirePermissions(permissions.EditOffers), updateOfferStatusHandler)
	offers.POST("/:id/convert", mutationGuard(), authn, requirePermissions(permissions.CreateOffers), convertOfferHandler)
	offers.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.DeleteOffers), deleteOfferHandler)

	employees := sec.Group("/employee")
	employees.GET("", authn, requirePermissions(permissions.ViewEmployees), listEmployeesHandler)
	employees.GET("/:id", authn, requirePermissions(permissions.ViewEmployees), getEmployeeHandler)
	employees.POST("", mutationGuard(), authn, requirePermissions(permissions.CreateEmployees), createEmployeeHandler)
	employees.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.EditEmployees), updateEmployeeHandler)
	employees.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.DeleteEmployees), deleteEmployeeHandler)

	users := sec.Group("/users")
	users.GET("", authn, requirePermissions(permissions.ViewUsers), listUsersHandler)
	users.GET("/:id", authn, requirePermissions(permissions.ViewUsers), getUserHandler)
	users.POST("", mutationGuard(), authn, requirePermissions(permissions.ManageUsers), createUserHandler)
	users.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.ManageUsers), updateUserHandler)
	users.PATCH("/:id/password", mutationGuard(), authn, requirePermissions(permissions.ManageUsers), resetUserPasswordHandler)
	users.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.ManageUsers), deleteUserHandler)

	roles := sec.Group("/roles")
	roles.GET("", authn, requirePermissions(permissions.ManageRoles), listRolesHandler)
	roles.POST("", mutationGuard(), authn, requirePermissions(permissions.ManageRoles), createRoleHandler)
	roles.PATCH("/:id", mutationGuard(), authn, requirePermissions(permissions.ManageRoles), updateRoleHandler)
	roles.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.ManageRoles), deleteRoleHandler)

	company := sec.Group("/company")
	company.GET("", authn, requirePermissions(permissions.ViewCompany), getCompanyHandler)
	company.PATCH("", mutationGuard(), authn, requirePermissions(permissions.EditCompany), updateCompanyHandler)
	company.POST("/logo", mutationGuard(), authn, requirePermissions(permissions.EditCompany), uploadCompanyLogoHandler)

	settings := sec.Group("/settings")
	settings.GET("", authn, requirePermissions(permissions.ManageSettings), listSettingsHandler)
	settings.PATCH("", mutationGuard(), authn, requirePermissions(permissions.ManageSettings), updateSettingsHandler)

	backups := sec.Group("/backups")
	backups.GET("", authn, requirePermissions(permissions.ManageBackups), listBackupsHandler)
	backups.POST("", mutationGuard(), authn, requirePermissions(permissions.ManageBackups), createBackupHandler)
	backups.GET("/:id/download", authn, requirePermissions(permissions.ManageBackups), downloadBackupHandler)
	backups.DELETE("/:id", mutationGuard(), authn, requirePermissions(permissions.ManageBackups), deleteBackupHandler)

	// guarded like a mutation even though it is a GET: the response carries
	// the company's bank data
	sec.GET("/qrcode", mutationGuard(), authn, requirePermissions(permissions.ViewOffers), qrcodeHandler)
}
