// Package permissions defines the closed set of capability keys and the
// predicates used for authorization checks on both the API routes and the
// permission list handed to clients.
package permissions

// Capability keys. This set is closed: roles can only reference keys listed
// here, and the permissions table is synced against it at startup.
const (
	ViewCustomers   = "VIEW_CUSTOMERS"
	CreateCustomers = "CREATE_CUSTOMERS"
	EditCustomers   = "EDIT_CUSTOMERS"
	DeleteCustomers = "DELETE_CUSTOMERS"

	ViewProducts   = "VIEW_PRODUCTS"
	CreateProducts = "CREATE_PRODUCTS"
	EditProducts   = "EDIT_PRODUCTS"
	DeleteProducts = "DELETE_PRODUCTS"

	ViewCategories   = "VIEW_CATEGORIES"
	CreateCategories = "CREATE_CATEGORIES"
	EditCategories   = "EDIT_CATEGORIES"
	DeleteCategories = "DELETE_CATEGORIES"

	ViewOffers   = "VIEW_OFFERS"
	CreateOffers = "CREATE_OFFERS"
	EditOffers   = "EDIT_OFFERS"
	DeleteOffers = "DELETE_OFFERS"

	ViewEmployees   = "VIEW_EMPLOYEES"
	CreateEmployees = "CREATE_EMPLOYEES"
	EditEmployees   = "EDIT_EMPLOYEES"
	DeleteEmployees = "DELETE_EMPLOYEES"

	ViewUsers   = "VIEW_USERS"
	ManageUsers = "MANAGE_USERS"
	ManageRoles = "MANAGE_ROLES"

	ViewCompany = "VIEW_COMPANY"
	EditCompany = "EDIT_COMPANY"

	ManageBackups  = "MANAGE_BACKUPS"
	ManageSettings = "MANAGE_SETTINGS"
)

// Descriptions maps every known key to a human-readable description used when
// seeding the permissions table.
var Descriptions = map[string]string{
	ViewCustomers:   "Kunden ansehen",
	CreateCustomers: "Kunden anlegen",
	EditCustomers:   "Kunden bearbeiten",
	DeleteCustomers: "Kunden löschen",

	ViewProducts:   "Produkte ansehen",
	CreateProducts: "Produkte anlegen",
	EditProducts:   "Produkte bearbeiten",
	DeleteProducts: "Produkte löschen",

	ViewCategories:   "Kategorien ansehen",
	CreateCategories: "Kategorien anlegen",
	EditCategories:   "Kategorien bearbeiten",
	DeleteCategories: "Kategorien löschen",

	ViewOffers:   "Angebote ansehen",
	CreateOffers: "Angebote anlegen",
	EditOffers:   "Angebote bearbeiten",
	DeleteOffers: "Angebote löschen",

	ViewEmployees:   "Mitarbeiter ansehen",
	CreateEmployees: "Mitarbeiter anlegen",
	EditEmployees:   "Mitarbeiter bearbeiten",
	DeleteEmployees: "Mitarbeiter löschen",

	ViewUsers:   "Benutzer ansehen",
	ManageUsers: "Benutzer verwalten",
	ManageRoles: "Rollen verwalten",

	ViewCompany: "Firmendaten ansehen",
	EditCompany: "Firmendaten bearbeiten",

	ManageBackups:  "Backups verwalten",
	ManageSettings: "Systemeinstellungen verwalten",
}

// All returns every known key in a stable order.
func All() []string {
	return append([]string(nil), ordered...)
}

var ordered = []string{
	ViewCustomers, CreateCustomers, EditCustomers, DeleteCustomers,
	ViewProducts, CreateProducts, EditProducts, DeleteProducts,
	ViewCategories, CreateCategories, EditCategories, DeleteCategories,
	ViewOffers, CreateOffers, EditOffers, DeleteOffers,
	ViewEmployees, CreateEmployees, EditEmployees, DeleteEmployees,
	ViewUsers, ManageUsers, ManageRoles,
	ViewCompany, EditCompany,
	ManageBackups, ManageSettings,
}

// ViewOnly returns the subset of keys granting read access, used to seed the
// default non-admin role.
func ViewOnly() []string {
	return []string{ViewCustomers, ViewProducts, ViewCategories, ViewOffers, ViewEmployees, ViewCompany}
}

// Known reports whether key is part of the closed set.
func Known(key string) bool {
	_, ok := Descriptions[key]
	return ok
}

// Has reports whether set contains key.
func Has(set []string, key string) bool {
	for _, k := range set {
		if k == key {
			return true
		}
	}
	return false
}

// HasAll reports whether set contains every required key. An empty required
// list is vacuously satisfied.
func HasAll(set, required []string) bool {
	for _, k := range required {
		if !Has(set, k) {
			return false
		}
	}
	return true
}

// HasAny reports whether set contains at least one of the required keys.
// False when required is empty or set is empty.
func HasAny(set, required []string) bool {
	for _, k := range required {
		if Has(set, k) {
			return true
		}
	}
	return false
}
