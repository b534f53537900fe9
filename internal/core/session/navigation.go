package session

import (
	"fmt"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// AuthScreen is the screen shown to anonymous visitors.
type AuthScreen string

const (
	ScreenLogin      AuthScreen = "login"
	ScreenSignUp     AuthScreen = "signup"
	ScreenAdminLogin AuthScreen = "admin_login"
)

func (s AuthScreen) Valid() bool {
	return s == ScreenLogin || s == ScreenSignUp || s == ScreenAdminLogin
}

// Page is the active page of the client view.
type Page string

const (
	PageProgress   Page = "Progress"
	PageGuidelines Page = "Guidelines"
	PageAssets     Page = "Assets"
	PageContact    Page = "Contact"
)

func (p Page) Valid() bool {
	switch p {
	case PageProgress, PageGuidelines, PageAssets, PageContact:
		return true
	}
	return false
}

// AdminScreen is the active screen of the admin shell.
type AdminScreen string

const (
	AdminDashboard AdminScreen = "dashboard"
	AdminEditor    AdminScreen = "editor"
	AdminUsers     AdminScreen = "users"
)

func (s AdminScreen) Valid() bool {
	return s == AdminDashboard || s == AdminEditor || s == AdminUsers
}

// Navigation holds the one enum that applies to the current role; the
// others are empty.
type Navigation struct {
	AuthScreen  AuthScreen  `json:"auth_screen,omitempty"`
	Page        Page        `json:"page,omitempty"`
	AdminScreen AdminScreen `json:"admin_screen,omitempty"`
}

func defaultNavigation(r access.Role) Navigation {
	switch r {
	case access.RoleClient:
		return Navigation{Page: PageProgress}
	case access.RoleAdmin:
		return Navigation{AdminScreen: AdminDashboard}
	default:
		return Navigation{AuthScreen: ScreenLogin}
	}
}

func invalidNavigation(target string, r access.Role) error {
	return fmt.Errorf("%w: %s is not available to %s", domain.ErrInvalidNavigation, target, r)
}
