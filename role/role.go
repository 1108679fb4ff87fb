package role

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a name is not one of the closed role set.
var ErrUnknownRole = errors.New("unknown role")

// Name is one of STUDENT, INSTRUCTOR or ADMIN.
type Name string

const (
	// Student is the default learner role.
	Student Name = "STUDENT"
	// Instructor may author and manage courses.
	Instructor Name = "INSTRUCTOR"
	// Admin manages users and instructor requests.
	Admin Name = "ADMIN"
)

// byPriority lists names from lowest to highest privilege. The position is the bit.
var byPriority = [...]Name{Student, Instructor, Admin}

func (n Name) bit() (int, bool) {
	for i, candidate := range byPriority {
		if candidate == n {
			return i, true
		}
	}
	return 0, false
}

// All returns every role from highest to lowest privilege.
func All() []Name {
	out := make([]Name, 0, len(byPriority))
	for i := len(byPriority) - 1; i >= 0; i-- {
		out = append(out, byPriority[i])
	}
	return out
}

// Valid reports whether n is part of the closed role set.
func (n Name) Valid() bool {
	_, ok := n.bit()
	return ok
}

func (n Name) String() string {
	return string(n)
}

// Parse normalizes raw and maps it onto the closed set. Surrounding whitespace,
// letter case and a Spring-style "ROLE_" prefix are ignored.
func Parse(raw string) (Name, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "ROLE_")
	n := Name(s)
	if !n.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, strings.TrimSpace(raw))
	}
	return n, nil
}

// ParseAll parses every entry of raw. The first unknown name fails the whole call.
func ParseAll(raw []string) (Set, error) {
	var s Set
	for _, r := range raw {
		n, err := Parse(r)
		if err != nil {
			return 0, err
		}
		s.Add(n)
	}
	return s, nil
}
