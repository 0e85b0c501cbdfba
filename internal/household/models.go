// Package household holds the gift-tracker records and the mutations the
// app performs on them.
package household

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/andrewpark3412/gift-tracking/internal/gateway"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
)

// Collection names in the remote store.
const (
	CollectionLists   = "lists"
	CollectionPeople  = "people"
	CollectionGifts   = "gifts"
	CollectionInvites = "household_invites"
	CollectionMembers = "household_members"
)

type ListVisibility string

const (
	VisibilityPrivate   ListVisibility = "private"
	VisibilityHousehold ListVisibility = "household"
)

type GiftStatus string

const (
	GiftIdea      GiftStatus = "idea"
	GiftPurchased GiftStatus = "purchased"
)

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRevoked  InviteStatus = "revoked"
	InviteExpired  InviteStatus = "expired"
)

type Household struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

type HouseholdMember struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"household_id"`
	UserID      string     `json:"user_id"`
	Role        MemberRole `json:"role"`
	CreatedAt   string     `json:"created_at"`
}

type List struct {
	ID          string         `json:"id"`
	HouseholdID string         `json:"household_id"`
	OwnerUserID string         `json:"owner_user_id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Visibility  ListVisibility `json:"visibility"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// Person is a gift recipient on a list. A nil Budget means no budget.
type Person struct {
	ID                  string   `json:"id"`
	ListID              string   `json:"list_id"`
	Name                string   `json:"name"`
	Budget              *float64 `json:"budget"`
	IsManuallyCompleted bool     `json:"is_manually_completed"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

type Gift struct {
	ID          string     `json:"id"`
	PersonID    string     `json:"person_id"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Status      GiftStatus `json:"status"`
	IsWrapped   bool       `json:"is_wrapped"`
	Notes       *string    `json:"notes"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// Unconfirmed reports whether the gift only exists in the offline queue.
func (g Gift) Unconfirmed() bool { return gateway.IsTemporaryID(g.ID) }

type HouseholdInvite struct {
	ID           string       `json:"id"`
	HouseholdID  string       `json:"household_id"`
	InvitedEmail string       `json:"invited_email"`
	Token        string       `json:"token"`
	Status       InviteStatus `json:"status"`
	InvitedBy    string       `json:"invited_by"`
	CreatedAt    string       `json:"created_at"`
	ExpiresAt    string       `json:"expires_at"`
	AcceptedAt   *string      `json:"accepted_at"`
}

// Decode converts a remote record into a typed model.
func Decode[T any](rec remote.Record) (T, error) {
	var out T
	data, err := json.Marshal(rec)
	if err != nil {
		return out, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// DecodeAll converts a slice of records.
func DecodeAll[T any](recs []remote.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Merge overlays a partial record, such as the one an offline update
// returns, onto a cached model.
func Merge[T any](cached T, partial remote.Record) (T, error) {
	data, err := json.Marshal(cached)
	if err != nil {
		return cached, fmt.Errorf("encode cached: %w", err)
	}
	var base remote.Record
	if err := json.Unmarshal(data, &base); err != nil {
		return cached, fmt.Errorf("decode cached: %w", err)
	}
	maps.Copy(base, partial)
	return Decode[T](base)
}
