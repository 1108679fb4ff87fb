package route

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MrEthical07/goGate/role"
)

// Table resolves paths to protected areas. It is immutable after Build and safe
// for concurrent use.
type Table struct {
	signIn  string
	areas   []Area // longest prefix first
	landing map[role.Name]Area
}

// Build validates defs and assembles a Table. Every role must have exactly one
// landing area, and a role's landing area must admit that role.
func Build(signIn string, defs []Definition) (*Table, error) {
	if signIn == "" {
		signIn = DefaultSignInPath
	}
	if !strings.HasPrefix(signIn, "/") {
		return nil, fmt.Errorf("%w: sign-in path %q must be rooted", ErrInvalidTable, signIn)
	}
	t := &Table{
		signIn:  Clean(signIn),
		areas:   make([]Area, 0, len(defs)),
		landing: make(map[role.Name]Area, 3),
	}

	seen := make(map[string]string, len(defs))
	for _, d := range defs {
		a, err := d.area()
		if err != nil {
			return nil, err
		}
		if other, dup := seen[a.Prefix]; dup {
			return nil, fmt.Errorf("%w: areas %s and %s share prefix %s", ErrInvalidTable, other, a.Name, a.Prefix)
		}
		seen[a.Prefix] = a.Name
		if a.contains(t.signIn) {
			return nil, fmt.Errorf("%w: sign-in path %s is inside area %s", ErrInvalidTable, t.signIn, a.Name)
		}
		if d.LandingFor != "" {
			n, err := role.Parse(d.LandingFor)
			if err != nil {
				return nil, fmt.Errorf("%w: area %s: %v", ErrInvalidTable, a.Name, err)
			}
			if _, dup := t.landing[n]; dup {
				return nil, fmt.Errorf("%w: role %s has two landing areas", ErrInvalidTable, n)
			}
			if !a.Rule.RequiredRoles.Empty() && !a.Rule.RequiredRoles.Has(n) {
				return nil, fmt.Errorf("%w: area %s does not admit its landing role %s", ErrInvalidTable, a.Name, n)
			}
			t.landing[n] = a
		}
		t.areas = append(t.areas, a)
	}
	for _, n := range role.All() {
		if _, ok := t.landing[n]; !ok {
			return nil, fmt.Errorf("%w: role %s has no landing area", ErrInvalidTable, n)
		}
	}

	sort.SliceStable(t.areas, func(i, j int) bool {
		return len(t.areas[i].Prefix) > len(t.areas[j].Prefix)
	})
	return t, nil
}

// DefaultTable is Build(DefaultSignInPath, DefaultDefinitions()).
func DefaultTable() *Table {
	t, err := Build(DefaultSignInPath, DefaultDefinitions())
	if err != nil {
		panic("route: default table invalid: " + err.Error())
	}
	return t
}

// SignInPath is the redirect target for unauthenticated navigations.
func (t *Table) SignInPath() string {
	return t.signIn
}

// Match returns the protected area containing target. ok is false for paths that
// belong to no area; those are public.
func (t *Table) Match(target string) (Area, bool) {
	p := Clean(target)
	for _, a := range t.areas {
		if a.contains(p) {
			return a, true
		}
	}
	return Area{}, false
}

// Areas returns a copy of the protected areas, longest prefix first.
func (t *Table) Areas() []Area {
	out := make([]Area, len(t.areas))
	copy(out, t.areas)
	return out
}

// LandingAreaFor returns the landing area of the most privileged role in roles.
func (t *Table) LandingAreaFor(roles role.Set) (Area, error) {
	top, ok := roles.Highest()
	if !ok {
		return Area{}, ErrNoLandingArea
	}
	return t.landing[top], nil
}

var defaultTable = DefaultTable()

// LandingAreaFor resolves roles against the default table. The zero Area is
// returned for an empty set.
func LandingAreaFor(roles role.Set) Area {
	a, _ := defaultTable.LandingAreaFor(roles)
	return a
}
