package role

import "strings"

// Set is a bitmask over the closed role set. The zero value is empty.
type Set uint8

// NewSet builds a Set from names. Unknown names are ignored; use [ParseAll] for
// untrusted input.
func NewSet(names ...Name) Set {
	var s Set
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add sets the bit for n.
func (s *Set) Add(n Name) {
	bit, ok := n.bit()
	if !ok {
		return
	}
	*s |= 1 << bit
}

// Has reports whether n is in the set.
func (s Set) Has(n Name) bool {
	bit, ok := n.bit()
	if !ok {
		return false
	}
	return s&(1<<bit) != 0
}

// Intersects reports whether s and other share at least one role.
func (s Set) Intersects(other Set) bool {
	return s&other != 0
}

func (s Set) Empty() bool {
	return s == 0
}

// Len returns the number of roles in the set.
func (s Set) Len() int {
	n := 0
	for i := range byPriority {
		if s&(1<<i) != 0 {
			n++
		}
	}
	return n
}

// Names returns the members from highest to lowest privilege.
func (s Set) Names() []Name {
	out := make([]Name, 0, len(byPriority))
	for i := len(byPriority) - 1; i >= 0; i-- {
		if s&(1<<i) != 0 {
			out = append(out, byPriority[i])
		}
	}
	return out
}

// Strings is Names as plain strings, in the same order.
func (s Set) Strings() []string {
	names := s.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// Highest returns the most privileged member under ADMIN > INSTRUCTOR > STUDENT.
// ok is false for an empty set.
func (s Set) Highest() (Name, bool) {
	for i := len(byPriority) - 1; i >= 0; i-- {
		if s&(1<<i) != 0 {
			return byPriority[i], true
		}
	}
	return "", false
}

func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}
