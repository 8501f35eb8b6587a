package auth

// Well-known permission slugs, one block per module. Route registration and
// the seeder both read from these so a typo cannot silently open a route.
const (
	PermUsersView   = "users:view"
	PermUsersCreate = "users:create"
	PermUsersEdit   = "users:edit"
	PermUsersDelete = "users:delete"

	PermPermissionsView   = "permissions:view"
	PermPermissionsCreate = "permissions:create"
	PermPermissionsEdit   = "permissions:edit"
	PermPermissionsDelete = "permissions:delete"

	PermGroupsView   = "groups:view"
	PermGroupsCreate = "groups:create"
	PermGroupsEdit   = "groups:edit"
	PermGroupsDelete = "groups:delete"

	PermCustomersView   = "customers:view"
	PermCustomersCreate = "customers:create"
	PermCustomersEdit   = "customers:edit"
	PermCustomersDelete = "customers:delete"

	PermCakesView   = "cakes:view"
	PermCakesCreate = "cakes:create"
	PermCakesEdit   = "cakes:edit"
	PermCakesDelete = "cakes:delete"

	PermTraysView   = "trays:view"
	PermTraysCreate = "trays:create"
	PermTraysEdit   = "trays:edit"
	PermTraysDelete = "trays:delete"

	PermArticlesView   = "articles:view"
	PermArticlesCreate = "articles:create"
	PermArticlesEdit   = "articles:edit"
	PermArticlesDelete = "articles:delete"

	PermOrdersView   = "orders:view"
	PermOrdersCreate = "orders:create"
	PermOrdersEdit   = "orders:edit"
	PermOrdersDelete = "orders:delete"

	PermEventsView   = "events:view"
	PermEventsCreate = "events:create"
	PermEventsEdit   = "events:edit"
	PermEventsDelete = "events:delete"

	PermAuditView = "audit:view"
)

// AllPermissionSlugs lists every known slug, used by the startup seeder.
func AllPermissionSlugs() []string {
	return []string{
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
		PermPermissionsView, PermPermissionsCreate, PermPermissionsEdit, PermPermissionsDelete,
		PermGroupsView, PermGroupsCreate, PermGroupsEdit, PermGroupsDelete,
		PermCustomersView, PermCustomersCreate, PermCustomersEdit, PermCustomersDelete,
		PermCakesView, PermCakesCreate, PermCakesEdit, PermCakesDelete,
		PermTraysView, PermTraysCreate, PermTraysEdit, PermTraysDelete,
		PermArticlesView, PermArticlesCreate, PermArticlesEdit, PermArticlesDelete,
		PermOrdersView, PermOrdersCreate, PermOrdersEdit, PermOrdersDelete,
		PermEventsView, PermEventsCreate, PermEventsEdit, PermEventsDelete,
		PermAuditView,
	}
}
