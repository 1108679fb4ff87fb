package credential

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGate/role"
	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedCredential is returned for any credential whose payload does not match
// the expected structure.
var ErrMalformedCredential = errors.New("malformed credential")

// payload is the accepted claim schema. roles may be a JSON array of strings or a
// single string.
type payload struct {
	Roles  rolesClaim `json:"roles"`
	UserID int64      `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

type rolesClaim struct {
	present bool
	values  []string
}

func (r *rolesClaim) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	r.present = true

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		r.values = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("roles must be a string or an array of strings")
	}
	r.values = many
	return nil
}

// Codec decodes credentials. The zero value is not usable; construct with [NewCodec].
type Codec struct {
	parser *jwt.Parser
}

// NewCodec returns a codec. It is safe for concurrent use.
func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

var defaultCodec = NewCodec()

// Decode decodes credential with the package default codec.
func Decode(credential string) (Identity, error) {
	return defaultCodec.Decode(credential)
}

// Decode parses the three-part token without verifying its signature and validates
// the payload: sub must be non-empty, roles must be a non-empty list of known role
// names and exp must be present.
func (c *Codec) Decode(credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, fmt.Errorf("%w: empty", ErrMalformedCredential)
	}
	if strings.Count(credential, ".") != 2 {
		return Identity{}, fmt.Errorf("%w: expected three segments", ErrMalformedCredential)
	}

	var claims payload
	if _, _, err := c.parser.ParseUnverified(credential, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrMalformedCredential)
	}
	if !claims.Roles.present || len(claims.Roles.values) == 0 {
		return Identity{}, fmt.Errorf("%w: missing roles", ErrMalformedCredential)
	}
	roles, err := role.ParseAll(claims.Roles.values)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if roles.Empty() {
		return Identity{}, fmt.Errorf("%w: empty role set", ErrMalformedCredential)
	}
	if claims.ExpiresAt == nil {
		return Identity{}, fmt.Errorf("%w: missing expiry", ErrMalformedCredential)
	}

	id := Identity{
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		Roles:     roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}
