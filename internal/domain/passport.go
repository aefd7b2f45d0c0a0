package domain

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Community is the owning scope for passports. Deleting a community cascades
// to every passport registered in it.
type Community struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// Passport is the identity record for one (address, community) pair.
// RequiresCalculation is tri-state: nil means the passport has never been
// flagged, false means the last recalculation consumed the flag.
type Passport struct {
	ID                  uint64 `json:"id"`
	Address             string `json:"address"`
	CommunityID         uint32 `json:"community_id"`
	RequiresCalculation *bool  `json:"requires_calculation,omitempty"`
}

// Stamp is one verified credential attached to a passport. Credential is the
// opaque JSON document produced by the verification collaborator.
type Stamp struct {
	ID         uint64          `json:"id"`
	PassportID uint64          `json:"-"`
	Hash       string          `json:"hash"`
	Provider   string          `json:"provider"`
	Credential json.RawMessage `json:"credential"`
}

// ErrInvalidAddress is returned when an inbound address is not a hex
// blockchain address.
var ErrInvalidAddress = errors.New("invalid address")

// NormalizeAddress validates an inbound blockchain address and returns its
// canonical lowercase hex form. All persistence is keyed on this form so the
// (address, community) uniqueness invariant is case-insensitive.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}
