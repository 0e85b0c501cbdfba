package household

import (
	"sort"
	"strings"
)

// ListTotals summarises a list's budgets. RemainingBudget is nil when no
// person on the list has a budget.
type ListTotals struct {
	TotalBudget           float64  `json:"total_budget"`
	TotalSpent            float64  `json:"total_spent"`
	RemainingBudget       *float64 `json:"remaining_budget"`
	PeopleCount           int      `json:"people_count"`
	OverBudgetPeopleCount int      `json:"over_budget_people_count"`
}

// PersonTotals summarises one person.
type PersonTotals struct {
	PersonID   string   `json:"person_id"`
	Budget     *float64 `json:"budget"`
	Spent      float64  `json:"spent"`
	Remaining  *float64 `json:"remaining"`
	OverBudget bool     `json:"over_budget"`
	GiftCount  int      `json:"gift_count"`
	Wrapped    int      `json:"wrapped"`
}

// Summarise computes a person's totals. Only purchased gifts count as spent.
func Summarise(p Person, gifts []Gift) PersonTotals {
	t := PersonTotals{PersonID: p.ID, Budget: p.Budget}
	for _, g := range gifts {
		if g.PersonID != p.ID {
			continue
		}
		t.GiftCount++
		if g.IsWrapped {
			t.Wrapped++
		}
		if g.Status == GiftPurchased {
			t.Spent += g.Price
		}
	}
	if p.Budget != nil {
		remaining := *p.Budget - t.Spent
		t.Remaining = &remaining
		t.OverBudget = t.Spent > *p.Budget
	}
	return t
}

// Totals computes list-level totals. Gifts for people outside people are
// ignored.
func Totals(people []Person, gifts []Gift) ListTotals {
	out := ListTotals{PeopleCount: len(people)}
	anyBudget := false
	for _, p := range people {
		t := Summarise(p, gifts)
		out.TotalSpent += t.Spent
		if p.Budget != nil {
			anyBudget = true
			out.TotalBudget += *p.Budget
		}
		if t.OverBudget {
			out.OverBudgetPeopleCount++
		}
	}
	if anyBudget {
		remaining := out.TotalBudget - out.TotalSpent
		out.RemainingBudget = &remaining
	}
	return out
}

// WrappingGroup is one person's purchased gifts that still need wrapping.
type WrappingGroup struct {
	PersonID   string `json:"person_id"`
	PersonName string `json:"person_name"`
	Gifts      []Gift `json:"gifts"`
}

// WrappingQueue groups purchased, unwrapped gifts by person, ordered by
// person name.
func WrappingQueue(people []Person, gifts []Gift) []WrappingGroup {
	byID := make(map[string]Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	groups := make(map[string]*WrappingGroup)
	for _, g := range gifts {
		if g.Status != GiftPurchased || g.IsWrapped {
			continue
		}
		p, ok := byID[g.PersonID]
		if !ok {
			continue
		}
		grp, ok := groups[p.ID]
		if !ok {
			grp = &WrappingGroup{PersonID: p.ID, PersonName: p.Name}
			groups[p.ID] = grp
		}
		grp.Gifts = append(grp.Gifts, g)
	}

	out := make([]WrappingGroup, 0, len(groups))
	for _, grp := range groups {
		out = append(out, *grp)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].PersonName) < strings.ToLower(out[j].PersonName)
	})
	return out
}
