package household

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/andrewpark3412/gift-tracking/internal/remote"
)

// ErrValidation is returned for input the forms would have refused.
var ErrValidation = errors.New("validation failed")

const (
	minYear = 1900
	maxYear = 9999
)

// Mutator is the offline-aware write path.
type Mutator interface {
	Insert(ctx context.Context, collection string, data remote.Record) (remote.Record, error)
	Update(ctx context.Context, collection, id string, updates remote.Record) (remote.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// Service performs household mutations through the gateway and reads
// through the remote store.
type Service struct {
	gw     Mutator
	reader remote.Reader
}

// NewService creates a service. reader may be nil when only writes are used.
func NewService(gw Mutator, reader remote.Reader) *Service {
	return &Service{gw: gw, reader: reader}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type NewGift struct {
	PersonID    string
	Description string
	Price       float64
	Status      GiftStatus
	IsWrapped   bool
	Notes       *string
}

// GiftUpdate lists the fields to change; nil fields are left alone. An empty
// Notes clears the notes.
type GiftUpdate struct {
	Description *string
	Price       *float64
	Status      *GiftStatus
	IsWrapped   *bool
	Notes       *string
}

func validStatus(s GiftStatus) bool { return s == GiftIdea || s == GiftPurchased }

// CreateGift adds a gift for a person. The returned gift carries a
// temporary id when it was queued.
func (s *Service) CreateGift(ctx context.Context, in NewGift) (Gift, error) {
	desc := strings.TrimSpace(in.Description)
	switch {
	case in.PersonID == "":
		return Gift{}, invalid("gift needs a person")
	case desc == "":
		return Gift{}, invalid("description is required")
	case in.Price < 0:
		return Gift{}, invalid("price cannot be negative")
	}
	status := in.Status
	if status == "" {
		status = GiftIdea
	}
	if !validStatus(status) {
		return Gift{}, invalid("unknown gift status %q", status)
	}

	rec, err := s.gw.Insert(ctx, CollectionGifts, remote.Record{
		"person_id":   in.PersonID,
		"description": desc,
		"price":       in.Price,
		"status":      string(status),
		"is_wrapped":  in.IsWrapped,
		"notes":       nullableString(in.Notes),
	})
	if err != nil {
		return Gift{}, err
	}
	return Decode[Gift](rec)
}

// UpdateGift applies u and returns the record the gateway produced, which
// is partial when the update was queued.
func (s *Service) UpdateGift(ctx context.Context, id string, u GiftUpdate) (remote.Record, error) {
	updates := remote.Record{}
	if u.Description != nil {
		desc := strings.TrimSpace(*u.Description)
		if desc == "" {
			return nil, invalid("description is required")
		}
		updates["description"] = desc
	}
	if u.Price != nil {
		if *u.Price < 0 {
			return nil, invalid("price cannot be negative")
		}
		updates["price"] = *u.Price
	}
	if u.Status != nil {
		if !validStatus(*u.Status) {
			return nil, invalid("unknown gift status %q", *u.Status)
		}
		updates["status"] = string(*u.Status)
	}
	if u.IsWrapped != nil {
		updates["is_wrapped"] = *u.IsWrapped
	}
	if u.Notes != nil {
		updates["notes"] = nullableString(u.Notes)
	}
	if len(updates) == 0 {
		return nil, invalid("nothing to update")
	}
	return s.gw.Update(ctx, CollectionGifts, id, updates)
}

// SetGiftWrapped marks a gift wrapped or unwrapped.
func (s *Service) SetGiftWrapped(ctx context.Context, id string, wrapped bool) (remote.Record, error) {
	return s.UpdateGift(ctx, id, GiftUpdate{IsWrapped: &wrapped})
}

func (s *Service) DeleteGift(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, CollectionGifts, id)
}

type NewPerson struct {
	ListID string
	Name   string
	Budget *float64
}

// PersonUpdate lists the fields to change. ClearBudget removes the budget.
type PersonUpdate struct {
	Name                *string
	Budget              *float64
	ClearBudget         bool
	IsManuallyCompleted *bool
}

func (s *Service) CreatePerson(ctx context.Context, in NewPerson) (Person, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case in.ListID == "":
		return Person{}, invalid("person needs a list")
	case name == "":
		return Person{}, invalid("name is required")
	case in.Budget != nil && *in.Budget < 0:
		return Person{}, invalid("budget cannot be negative")
	}

	rec, err := s.gw.Insert(ctx, CollectionPeople, remote.Record{
		"list_id":               in.ListID,
		"name":                  name,
		"budget":                nullableFloat(in.Budget),
		"is_manually_completed": false,
	})
	if err != nil {
		return Person{}, err
	}
	return Decode[Person](rec)
}

func (s *Service) UpdatePerson(ctx context.Context, id string, u PersonUpdate) (remote.Record, error) {
	updates := remote.Record{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, invalid("name is required")
		}
		updates["name"] = name
	}
	switch {
	case u.ClearBudget:
		updates["budget"] = nil
	case u.Budget != nil:
		if *u.Budget < 0 {
			return nil, invalid("budget cannot be negative")
		}
		updates["budget"] = *u.Budget
	}
	if u.IsManuallyCompleted != nil {
		updates["is_manually_completed"] = *u.IsManuallyCompleted
	}
	if len(updates) == 0 {
		return nil, invalid("nothing to update")
	}
	return s.gw.Update(ctx, CollectionPeople, id, updates)
}

func (s *Service) DeletePerson(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, CollectionPeople, id)
}

type NewList struct {
	HouseholdID string
	OwnerUserID string
	Name        string
	Year        int
	Visibility  ListVisibility
}

type ListUpdate struct {
	Name       *string
	Year       *int
	Visibility *ListVisibility
}

func validVisibility(v ListVisibility) bool {
	return v == VisibilityPrivate || v == VisibilityHousehold
}

func (s *Service) CreateList(ctx context.Context, in NewList) (List, error) {
	name := strings.TrimSpace(in.Name)
	visibility := in.Visibility
	if visibility == "" {
		visibility = VisibilityHousehold
	}
	switch {
	case in.HouseholdID == "" || in.OwnerUserID == "":
		return List{}, invalid("list needs a household and an owner")
	case name == "":
		return List{}, invalid("name is required")
	case in.Year < minYear || in.Year > maxYear:
		return List{}, invalid("year %d out of range", in.Year)
	case !validVisibility(visibility):
		return List{}, invalid("unknown visibility %q", visibility)
	}

	rec, err := s.gw.Insert(ctx, CollectionLists, remote.Record{
		"household_id":  in.HouseholdID,
		"owner_user_id": in.OwnerUserID,
		"name":          name,
		"year":          in.Year,
		"visibility":    string(visibility),
	})
	if err != nil {
		return List{}, err
	}
	return Decode[List](rec)
}

func (s *Service) UpdateList(ctx context.Context, id string, u ListUpdate) (remote.Record, error) {
	updates := remote.Record{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, invalid("name is required")
		}
		updates["name"] = name
	}
	if u.Year != nil {
		if *u.Year < minYear || *u.Year > maxYear {
			return nil, invalid("year %d out of range", *u.Year)
		}
		updates["year"] = *u.Year
	}
	if u.Visibility != nil {
		if !validVisibility(*u.Visibility) {
			return nil, invalid("unknown visibility %q", *u.Visibility)
		}
		updates["visibility"] = string(*u.Visibility)
	}
	if len(updates) == 0 {
		return nil, invalid("nothing to update")
	}
	return s.gw.Update(ctx, CollectionLists, id, updates)
}

func (s *Service) DeleteList(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, CollectionLists, id)
}

// InviteMember invites email into a household. The remote store generates
// the token and expiry.
func (s *Service) InviteMember(ctx context.Context, householdID, email, invitedBy string) (HouseholdInvite, error) {
	email = strings.TrimSpace(email)
	if householdID == "" || invitedBy == "" {
		return HouseholdInvite{}, invalid("invite needs a household and an inviter")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return HouseholdInvite{}, invalid("invalid email %q", email)
	}

	rec, err := s.gw.Insert(ctx, CollectionInvites, remote.Record{
		"household_id":  householdID,
		"invited_email": email,
		"invited_by":    invitedBy,
	})
	if err != nil {
		return HouseholdInvite{}, err
	}
	return Decode[HouseholdInvite](rec)
}

// InviteLink builds the accept link the app opens for an invite token.
func InviteLink(appURL, token string) (string, error) {
	if token == "" {
		return "", invalid("invite has no token yet")
	}
	u, err := url.Parse(strings.TrimSpace(appURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", invalid("app url %q is not absolute", appURL)
	}
	q := u.Query()
	q.Set("invite", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Service) RevokeInvite(ctx context.Context, id string) (remote.Record, error) {
	return s.gw.Update(ctx, CollectionInvites, id, remote.Record{"status": string(InviteRevoked)})
}

// RemoveMember deletes a membership row by its id.
func (s *Service) RemoveMember(ctx context.Context, memberID string) error {
	return s.gw.Delete(ctx, CollectionMembers, memberID)
}

// ErrNoReader is returned by read helpers on a write-only service.
var ErrNoReader = errors.New("household service has no reader")

// LoadList fetches a list's people and their gifts.
func (s *Service) LoadList(ctx context.Context, listID string) ([]Person, []Gift, error) {
	if s.reader == nil {
		return nil, nil, ErrNoReader
	}
	peopleRecs, err := s.reader.Select(ctx, CollectionPeople, remote.Eq("list_id", listID))
	if err != nil {
		return nil, nil, err
	}
	people, err := DecodeAll[Person](peopleRecs)
	if err != nil {
		return nil, nil, err
	}
	if len(people) == 0 {
		return people, nil, nil
	}

	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	giftRecs, err := s.reader.Select(ctx, CollectionGifts, remote.Query{"person_id": ids})
	if err != nil {
		return nil, nil, err
	}
	gifts, err := DecodeAll[Gift](giftRecs)
	if err != nil {
		return nil, nil, err
	}
	return people, gifts, nil
}

// ListTotals loads a list and computes its budget totals.
func (s *Service) ListTotals(ctx context.Context, listID string) (ListTotals, error) {
	people, gifts, err := s.LoadList(ctx, listID)
	if err != nil {
		return ListTotals{}, err
	}
	return Totals(people, gifts), nil
}

// Wrapping loads a list and returns what still needs wrapping.
func (s *Service) Wrapping(ctx context.Context, listID string) ([]WrappingGroup, error) {
	people, gifts, err := s.LoadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	return WrappingQueue(people, gifts), nil
}

func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
