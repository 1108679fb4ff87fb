package route

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/MrEthical07/goGate/authz"
	"github.com/MrEthical07/goGate/role"
)

var (
	// ErrInvalidTable is returned by Build for an inconsistent area definition.
	ErrInvalidTable = errors.New("invalid route table")
	// ErrNoLandingArea is returned when a role set has no landing area.
	ErrNoLandingArea = errors.New("no landing area for roles")
)

// DefaultSignInPath is where unauthenticated navigations are redirected.
const DefaultSignInPath = "/sign-in"

// Area is one protected subtree of the application.
type Area struct {
	// Name identifies the area in logs and audit events.
	Name string
	// Prefix is the path the area is mounted at. Every path at or below it belongs to
	// the area.
	Prefix string
	// Landing is the entry page of the area.
	Landing string
	Rule    authz.Rule
}

// Definition is the configuration form of an Area.
type Definition struct {
	Name    string   `yaml:"name"`
	Prefix  string   `yaml:"prefix"`
	Landing string   `yaml:"landing"`
	Roles   []string `yaml:"roles"`
	// LandingFor names the role whose post-login landing is this area.
	LandingFor string `yaml:"landing_for"`
}

// DefaultDefinitions returns the V-Learn area layout.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "dashboard", Prefix: "/dashboard", Landing: "/dashboard"},
		{Name: "admin", Prefix: "/admin", Landing: "/admin/dashboard", Roles: []string{"ADMIN"}, LandingFor: "ADMIN"},
		{Name: "instructor", Prefix: "/instructor", Landing: "/instructor/dashboard", Roles: []string{"INSTRUCTOR"}, LandingFor: "INSTRUCTOR"},
		{Name: "student", Prefix: "/student", Landing: "/student/dashboard", Roles: []string{"STUDENT"}, LandingFor: "STUDENT"},
	}
}

// Clean normalizes a navigation target to a rooted, cleaned path without query or
// fragment.
func Clean(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return "/"
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return path.Clean(target)
}

func (a Area) contains(p string) bool {
	if a.Prefix == "/" {
		return true
	}
	return p == a.Prefix || strings.HasPrefix(p, a.Prefix+"/")
}

func (d Definition) area() (Area, error) {
	if strings.TrimSpace(d.Name) == "" {
		return Area{}, fmt.Errorf("%w: area name is empty", ErrInvalidTable)
	}
	if !strings.HasPrefix(d.Prefix, "/") {
		return Area{}, fmt.Errorf("%w: area %s prefix %q must be rooted", ErrInvalidTable, d.Name, d.Prefix)
	}
	a := Area{Name: d.Name, Prefix: Clean(d.Prefix), Landing: d.Landing}
	if a.Landing == "" {
		a.Landing = a.Prefix
	}
	a.Landing = Clean(a.Landing)
	if !a.contains(a.Landing) {
		return Area{}, fmt.Errorf("%w: area %s landing %q outside prefix", ErrInvalidTable, d.Name, a.Landing)
	}
	required, err := role.ParseAll(d.Roles)
	if err != nil {
		return Area{}, fmt.Errorf("%w: area %s: %v", ErrInvalidTable, d.Name, err)
	}
	a.Rule = authz.Rule{RequiredRoles: required}
	return a, nil
}
