package household

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalsNoPeople(t *testing.T) {
	assert.Equal(t, ListTotals{}, Totals(nil, nil))
}

func TestTotalsWithoutBudgets(t *testing.T) {
	people := []Person{{ID: "p1"}, {ID: "p2"}}
	gifts := []Gift{
		{PersonID: "p1", Price: 10, Status: GiftPurchased},
		{PersonID: "p2", Price: 25, Status: GiftIdea},
	}
	got := Totals(people, gifts)
	assert.Equal(t, 10.0, got.TotalSpent)
	assert.Nil(t, got.RemainingBudget)
	assert.Equal(t, 0, got.OverBudgetPeopleCount)
}

func TestTotalsCountsOnlyPurchased(t *testing.T) {
	budget := 30.0
	people := []Person{{ID: "p1", Budget: &budget}}
	gifts := []Gift{
		{PersonID: "p1", Price: 20, Status: GiftPurchased},
		{PersonID: "p1", Price: 100, Status: GiftIdea},
		{PersonID: "stranger", Price: 500, Status: GiftPurchased},
	}
	got := Totals(people, gifts)
	assert.Equal(t, 20.0, got.TotalSpent)
	require.NotNil(t, got.RemainingBudget)
	assert.Equal(t, 10.0, *got.RemainingBudget)
	assert.Equal(t, 0, got.OverBudgetPeopleCount)
}

func TestSummariseOverBudgetIsStrict(t *testing.T) {
	budget := 20.0
	p := Person{ID: "p1", Budget: &budget}

	exact := Summarise(p, []Gift{{PersonID: "p1", Price: 20, Status: GiftPurchased, IsWrapped: true}})
	assert.False(t, exact.OverBudget)
	assert.Equal(t, 1, exact.Wrapped)
	require.NotNil(t, exact.Remaining)
	assert.Equal(t, 0.0, *exact.Remaining)

	over := Summarise(p, []Gift{{PersonID: "p1", Price: 20.01, Status: GiftPurchased}})
	assert.True(t, over.OverBudget)
}

func TestWrappingQueue(t *testing.T) {
	people := []Person{{ID: "p1", Name: "mom"}, {ID: "p2", Name: "Dad"}, {ID: "p3", Name: "Kid"}}
	gifts := []Gift{
		{ID: "g1", PersonID: "p1", Status: GiftPurchased},
		{ID: "g2", PersonID: "p1", Status: GiftPurchased, IsWrapped: true},
		{ID: "g3", PersonID: "p2", Status: GiftPurchased},
		{ID: "g4", PersonID: "p3", Status: GiftIdea},
		{ID: "g5", PersonID: "nobody", Status: GiftPurchased},
	}

	groups := WrappingQueue(people, gifts)
	require.Len(t, groups, 2)
	assert.Equal(t, "Dad", groups[0].PersonName)
	assert.Equal(t, "mom", groups[1].PersonName)
	require.Len(t, groups[1].Gifts, 1)
	assert.Equal(t, "g1", groups[1].Gifts[0].ID)
}

func TestMergeKeepsCachedFields(t *testing.T) {
	cached := Person{ID: "p1", ListID: "l1", Name: "Mom"}
	merged, err := Merge(cached, map[string]any{"id": "p1", "budget": 75})
	require.NoError(t, err)
	assert.Equal(t, "Mom", merged.Name)
	assert.Equal(t, "l1", merged.ListID)
	require.NotNil(t, merged.Budget)
	assert.Equal(t, 75.0, *merged.Budget)
}
