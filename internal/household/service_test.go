package household

import (
	"context"
	"testing"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/connectivity"
	"github.com/andrewpark3412/gift-tracking/internal/gateway"
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/andrewpark3412/gift-tracking/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	remote  *remote.Memory
	queue   *outbox.Queue
	monitor *connectivity.Monitor
	svc     *Service
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	b := bus.New()
	f := &fixture{remote: remote.NewMemory()}
	f.monitor = connectivity.NewMonitor(online, b, zap.NewNop())
	f.queue = outbox.NewQueue(context.Background(), store.NewMemory(), nil, b, zap.NewNop())
	gw := gateway.New(f.remote, f.queue, f.monitor, zap.NewNop())
	f.svc = NewService(gw, f.remote)
	return f
}

func ptr[T any](v T) *T { return &v }

func TestCreateGiftOnline(t *testing.T) {
	f := newFixture(t, true)

	g, err := f.svc.CreateGift(context.Background(), NewGift{PersonID: "p1", Description: "  Lego  ", Price: 40})
	require.NoError(t, err)
	assert.False(t, g.Unconfirmed())
	assert.Equal(t, "Lego", g.Description)
	assert.Equal(t, GiftIdea, g.Status)
	assert.Nil(t, g.Notes)

	calls := f.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, remote.Record{
		"person_id":   "p1",
		"description": "Lego",
		"price":       float64(40),
		"status":      "idea",
		"is_wrapped":  false,
		"notes":       nil,
	}, calls[0].Data)
}

func TestCreateGiftOfflineIsQueued(t *testing.T) {
	f := newFixture(t, false)

	g, err := f.svc.CreateGift(context.Background(), NewGift{
		PersonID: "p1", Description: "Lego", Price: 40, Status: GiftPurchased, Notes: ptr("blue box"),
	})
	require.NoError(t, err)
	assert.True(t, g.Unconfirmed())
	assert.Equal(t, GiftPurchased, g.Status)
	require.NotNil(t, g.Notes)
	assert.Equal(t, "blue box", *g.Notes)

	pending := f.queue.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, CollectionGifts, pending[0].Collection)
	assert.Empty(t, f.remote.Calls())
}

func TestCreateGiftValidation(t *testing.T) {
	f := newFixture(t, true)
	cases := map[string]NewGift{
		"no person":      {Description: "Lego"},
		"no description": {PersonID: "p1", Description: "   "},
		"negative price": {PersonID: "p1", Description: "Lego", Price: -1},
		"bad status":     {PersonID: "p1", Description: "Lego", Status: "wishlist"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateGift(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, f.remote.Calls())
}

func TestUpdateGiftOfflineReturnsPartial(t *testing.T) {
	f := newFixture(t, false)
	cached := Gift{ID: "g1", PersonID: "p1", Description: "Lego", Price: 40, Status: GiftIdea}

	partial, err := f.svc.UpdateGift(context.Background(), "g1", GiftUpdate{Status: ptr(GiftPurchased), Notes: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, remote.Record{"id": "g1", "status": "purchased", "notes": nil}, partial)

	merged, err := Merge(cached, partial)
	require.NoError(t, err)
	assert.Equal(t, GiftPurchased, merged.Status)
	assert.Equal(t, "Lego", merged.Description)
	assert.Equal(t, float64(40), merged.Price)
}

func TestUpdateRequiresChanges(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.svc.UpdateGift(context.Background(), "g1", GiftUpdate{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdatePerson(context.Background(), "p1", PersonUpdate{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateList(context.Background(), "l1", ListUpdate{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetGiftWrapped(t *testing.T) {
	f := newFixture(t, true)
	f.remote.Seed(CollectionGifts, remote.Record{"id": "g1", "is_wrapped": false})

	_, err := f.svc.SetGiftWrapped(context.Background(), "g1", true)
	require.NoError(t, err)
	rec, _ := f.remote.Get(CollectionGifts, "g1")
	assert.Equal(t, true, rec["is_wrapped"])
}

func TestCreatePersonPayload(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.svc.CreatePerson(context.Background(), NewPerson{ListID: "l1", Name: "Mom"})
	require.NoError(t, err)
	p, err := f.svc.CreatePerson(context.Background(), NewPerson{ListID: "l1", Name: "Dad", Budget: ptr(50.0)})
	require.NoError(t, err)
	require.NotNil(t, p.Budget)
	assert.Equal(t, 50.0, *p.Budget)

	calls := f.remote.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, remote.Record{"list_id": "l1", "name": "Mom", "budget": nil, "is_manually_completed": false}, calls[0].Data)
	assert.Equal(t, 50.0, calls[1].Data["budget"])

	_, err = f.svc.CreatePerson(context.Background(), NewPerson{ListID: "l1", Name: "Kid", Budget: ptr(-5.0)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePersonClearBudget(t *testing.T) {
	f := newFixture(t, true)
	f.remote.Seed(CollectionPeople, remote.Record{"id": "p1", "name": "Mom", "budget": 50.0})

	rec, err := f.svc.UpdatePerson(context.Background(), "p1", PersonUpdate{ClearBudget: true, IsManuallyCompleted: ptr(true)})
	require.NoError(t, err)
	p, err := Decode[Person](rec)
	require.NoError(t, err)
	assert.Nil(t, p.Budget)
	assert.True(t, p.IsManuallyCompleted)
	assert.Equal(t, "Mom", p.Name)
}

func TestCreateListValidation(t *testing.T) {
	f := newFixture(t, true)

	l, err := f.svc.CreateList(context.Background(), NewList{HouseholdID: "h1", OwnerUserID: "u1", Name: "Christmas", Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, VisibilityHousehold, l.Visibility)
	assert.Equal(t, 2026, l.Year)

	_, err = f.svc.CreateList(context.Background(), NewList{HouseholdID: "h1", OwnerUserID: "u1", Name: "x", Year: 26})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateList(context.Background(), NewList{HouseholdID: "h1", OwnerUserID: "u1", Name: "x", Year: 2026, Visibility: "public"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateList(context.Background(), l.ID, ListUpdate{Visibility: ptr(VisibilityPrivate)})
	assert.NoError(t, err)
}

func TestInviteMember(t *testing.T) {
	f := newFixture(t, true)

	inv, err := f.svc.InviteMember(context.Background(), "h1", "  sam@example.com ", "u1")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", inv.InvitedEmail)
	assert.Equal(t, remote.Record{"household_id": "h1", "invited_email": "sam@example.com", "invited_by": "u1"}, f.remote.Calls()[0].Data)

	_, err = f.svc.InviteMember(context.Background(), "h1", "not-an-email", "u1")
	assert.ErrorIs(t, err, ErrValidation)

	rec, err := f.svc.RevokeInvite(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "revoked", rec["status"])
}

func TestDeletesGoThroughGateway(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteGift(ctx, "g1"))
	require.NoError(t, f.svc.DeletePerson(ctx, "p1"))
	require.NoError(t, f.svc.DeleteList(ctx, "l1"))
	require.NoError(t, f.svc.RemoveMember(ctx, "m1"))

	var got []string
	for _, op := range f.queue.Pending() {
		assert.Equal(t, outbox.KindDelete, op.Kind)
		got = append(got, op.Target())
	}
	assert.Equal(t, []string{"gifts/g1", "people/p1", "lists/l1", "household_members/m1"}, got)
}

func TestListTotalsFromRemote(t *testing.T) {
	f := newFixture(t, true)
	f.remote.Seed(CollectionPeople, remote.Record{"id": "p1", "list_id": "l1", "name": "Mom", "budget": 50.0})
	f.remote.Seed(CollectionPeople, remote.Record{"id": "p2", "list_id": "l1", "name": "Dad", "budget": nil})
	f.remote.Seed(CollectionPeople, remote.Record{"id": "p3", "list_id": "l2", "name": "Other"})
	f.remote.Seed(CollectionGifts, remote.Record{"id": "g1", "person_id": "p1", "price": 60.0, "status": "purchased"})
	f.remote.Seed(CollectionGifts, remote.Record{"id": "g2", "person_id": "p2", "price": 20.0, "status": "purchased"})
	f.remote.Seed(CollectionGifts, remote.Record{"id": "g3", "person_id": "p3", "price": 99.0, "status": "purchased"})

	totals, err := f.svc.ListTotals(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.PeopleCount)
	assert.Equal(t, 50.0, totals.TotalBudget)
	assert.Equal(t, 80.0, totals.TotalSpent)
	require.NotNil(t, totals.RemainingBudget)
	assert.Equal(t, -30.0, *totals.RemainingBudget)
	assert.Equal(t, 1, totals.OverBudgetPeopleCount)

	groups, err := f.svc.Wrapping(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Dad", groups[0].PersonName)
}

func TestLoadListRequiresReader(t *testing.T) {
	svc := NewService(nil, nil)
	_, _, err := svc.LoadList(context.Background(), "l1")
	assert.ErrorIs(t, err, ErrNoReader)
}

func TestInviteLink(t *testing.T) {
	link, err := InviteLink("https://gifts.example.com/app", "tok 1")
	require.NoError(t, err)
	assert.Equal(t, "https://gifts.example.com/app?invite=tok+1", link)

	_, err = InviteLink("https://gifts.example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = InviteLink("gifts.example.com", "tok")
	assert.ErrorIs(t, err, ErrValidation)
}
