package domain

import "errors"

var ErrPermissionDenied = errors.New("permission denied")

// Action names an operator capability gated by role.
type Action string

const (
	ActionPlaceOrder     Action = "place_order"
	ActionAdvanceStatus  Action = "advance_status"
	ActionViewLogs       Action = "view_logs"
	ActionSearchOrders   Action = "search_orders"
	ActionReceipt        Action = "receipt"
	ActionFilterProducts Action = "filter_products"
	ActionManageProducts Action = "manage_products"
	ActionLowStock       Action = "low_stock"
	ActionRestock        Action = "restock"
	ActionStockReport    Action = "stock_report"
	ActionBulkImport     Action = "bulk_import"
	ActionArchive        Action = "archive"
	ActionReorder        Action = "reorder"
	ActionRetry          Action = "retry"
	ActionClearLogs      Action = "clear_logs"
	ActionAddAdmin       Action = "add_admin"
	ActionChangePassword Action = "change_password"
	ActionReport         Action = "report"
	ActionSimulate       Action = "simulate"
	ActionLoadTestData   Action = "load_test_data"
)

var everyone = []Role{RoleAdmin, RoleManager, RoleSupport}

var capabilities = map[Action][]Role{
	ActionPlaceOrder:     everyone,
	ActionAdvanceStatus:  everyone,
	ActionViewLogs:       everyone,
	ActionSearchOrders:   everyone,
	ActionReceipt:        everyone,
	ActionFilterProducts: everyone,
	ActionReorder:        everyone,
	ActionRetry:          everyone,
	ActionSimulate:       everyone,
	ActionLoadTestData:   everyone,
	ActionChangePassword: everyone,

	ActionManageProducts: {RoleAdmin, RoleManager},
	ActionLowStock:       {RoleAdmin, RoleManager},
	ActionRestock:        {RoleAdmin, RoleManager},
	ActionStockReport:    {RoleAdmin, RoleManager},

	ActionBulkImport: {RoleAdmin},
	ActionArchive:    {RoleAdmin},
	ActionClearLogs:  {RoleAdmin},
	ActionAddAdmin:   {RoleAdmin},
	ActionReport:     {RoleAdmin},
}

// Allows reports whether role may perform action. Unknown actions are denied.
func Allows(role Role, action Action) bool {
	for _, r := range capabilities[action] {
		if r == role {
			return true
		}
	}
	return false
}
