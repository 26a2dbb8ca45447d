package model

// 画面メニュー1件と、それを使えるロール
type MenuEntry struct {
	Route        string `json:"route"`
	Title        string `json:"title"`
	AllowedRoles []Role `json:"-"`
}

func (m MenuEntry) Allows(role Role) bool {
	for _, r := range m.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	adminOnly      = []Role{RoleAdministrator}
	adminOrManager = []Role{RoleAdministrator, RoleManager}
	allStaff       = []Role{RoleAdministrator, RoleManager, RoleCashier}
)

// ルートガードもこの表を使う（メニューの表示とAPIの許可を一致させる）
var (
	MenuUsers    = MenuEntry{Route: "/users", Title: "Users", AllowedRoles: adminOnly}
	MenuItems    = MenuEntry{Route: "/items", Title: "Items", AllowedRoles: adminOrManager}
	MenuProducts = MenuEntry{Route: "/products", Title: "Products", AllowedRoles: allStaff}
	MenuCharts   = MenuEntry{Route: "/charts", Title: "Charts", AllowedRoles: adminOrManager}
	MenuReports  = MenuEntry{Route: "/reports", Title: "Reports", AllowedRoles: adminOrManager}
	MenuFeedback = MenuEntry{Route: "/feedback", Title: "Feedback", AllowedRoles: adminOrManager}
)

func AllMenu() []MenuEntry {
	return []MenuEntry{MenuUsers, MenuItems, MenuProducts, MenuCharts, MenuReports, MenuFeedback}
}

// roleが使えるメニューだけを元の順番のまま返す
func VisibleActions(role Role, all []MenuEntry) []MenuEntry {
	out := make([]MenuEntry, 0, len(all))
	for _, m := range all {
		if m.Allows(role) {
			out = append(out, m)
		}
	}
	return out
}
