package authz

// Campaign permissions.
const (
	PermCampaignsView    = "campaigns.view"
	PermCampaignsCreate  = "campaigns.create"
	PermCampaignsEdit    = "campaigns.edit"
	PermCampaignsEditAll = "campaigns.edit_all"
	PermCampaignsAssign  = "campaigns.assign"
	PermCampaignsDelete  = "campaigns.delete"
)

// Order and customer permissions.
const (
	PermOrdersView    = "orders.view"
	PermOrdersExport  = "orders.export"
	PermCustomersView = "customers.view"
)

// Administration permissions.
const (
	PermUsersView           = "users.view"
	PermUsersEdit           = "users.edit"
	PermUsersImpersonate    = "users.impersonate"
	PermSettingsPermissions = "settings.permissions"
)

// KnownPermissionCodes lists every permission code referenced in code. The
// persisted catalog may carry more; it is the source of truth for saves.
func KnownPermissionCodes() []string {
	return []string{
		PermCampaignsView,
		PermCampaignsCreate,
		PermCampaignsEdit,
		PermCampaignsEditAll,
		PermCampaignsAssign,
		PermCampaignsDelete,
		PermOrdersView,
		PermOrdersExport,
		PermCustomersView,
		PermUsersView,
		PermUsersEdit,
		PermUsersImpersonate,
		PermSettingsPermissions,
	}
}
