package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/credential"
	"github.com/MrEthical07/goGate/role"
)

const snapshotVersionCurrent = 1

var errSnapshotInvalid = errors.New("identity snapshot invalid")

type snapshot struct {
	Version   int      `json:"v"`
	Subject   string   `json:"sub"`
	UserID    int64    `json:"userId,omitempty"`
	Roles     []string `json:"roles"`
	ExpiresAt int64    `json:"exp"`
	IssuedAt  int64    `json:"iat,omitempty"`
}

// EncodeIdentity serializes id into the snapshot format stored next to the
// credential.
func EncodeIdentity(id credential.Identity) ([]byte, error) {
	if id.Subject == "" || id.Roles.Empty() {
		return nil, errSnapshotInvalid
	}
	snap := snapshot{
		Version:   snapshotVersionCurrent,
		Subject:   id.Subject,
		UserID:    id.UserID,
		Roles:     id.Roles.Strings(),
		ExpiresAt: id.ExpiresAt.Unix(),
	}
	if !id.IssuedAt.IsZero() {
		snap.IssuedAt = id.IssuedAt.Unix()
	}
	return json.Marshal(snap)
}

// DecodeIdentity parses a snapshot written by [EncodeIdentity].
func DecodeIdentity(data []byte) (credential.Identity, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return credential.Identity{}, fmt.Errorf("%w: %v", errSnapshotInvalid, err)
	}
	if snap.Version != snapshotVersionCurrent {
		return credential.Identity{}, fmt.Errorf("%w: unsupported version %d", errSnapshotInvalid, snap.Version)
	}
	roles, err := role.ParseAll(snap.Roles)
	if err != nil {
		return credential.Identity{}, fmt.Errorf("%w: %v", errSnapshotInvalid, err)
	}
	if snap.Subject == "" || roles.Empty() {
		return credential.Identity{}, errSnapshotInvalid
	}

	id := credential.Identity{
		Subject:   snap.Subject,
		UserID:    snap.UserID,
		Roles:     roles,
		ExpiresAt: time.Unix(snap.ExpiresAt, 0),
	}
	if snap.IssuedAt != 0 {
		id.IssuedAt = time.Unix(snap.IssuedAt, 0)
	}
	return id, nil
}
