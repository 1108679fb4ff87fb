package backend

import (
	"encoding/json"

	"github.com/MrEthical07/goGate/role"
)

// Profile is the user service's view of the signed-in account.
type Profile struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Phone     string        `json:"phone"`
	ImageURL  string        `json:"imageUrl"`
	Roles     []profileRole `json:"roles"`
}

// profileRole accepts both "ADMIN" and {"id":1,"name":"ADMIN"}.
type profileRole string

func (r *profileRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = profileRole(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = profileRole(obj.Name)
	return nil
}

// RoleSet maps the profile's roles onto the closed set. Unknown names are
// skipped; the profile is informational and never used for authorization.
func (p Profile) RoleSet() role.Set {
	var s role.Set
	for _, r := range p.Roles {
		if n, err := role.Parse(string(r)); err == nil {
			s.Add(n)
		}
	}
	return s
}
