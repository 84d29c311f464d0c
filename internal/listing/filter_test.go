package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterApply(t *testing.T) {
	list := []*Listing{
		{ID: "1", Title: "Plot", Location: "Sagnarigu", Price: 60000, Category: CategoryLand, Intent: IntentBuy, Featured: true},
		{ID: "2", Title: "Apartment", Location: "Tamale Central", Price: 2500, Category: CategoryHouse, Intent: IntentRent},
		{ID: "3", Title: "Bungalow", Location: "Nyohini", Price: 3500, Category: CategoryHouse, Intent: IntentRent, Description: "fenced yard"},
		{ID: "4", Title: "Farmland", Location: "sagnarigu", Price: 45000, Category: CategoryLand, Intent: IntentBuy},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter matches all", Filter{}, []string{"1", "2", "3", "4"}},
		{"location is case-insensitive", Filter{Location: "SAGNARIGU"}, []string{"1", "4"}},
		{"category", Filter{Category: CategoryHouse}, []string{"2", "3"}},
		{"intent", Filter{Intent: IntentBuy}, []string{"1", "4"}},
		{"min price", Filter{MinPrice: 3500}, []string{"1", "3", "4"}},
		{"max price", Filter{MaxPrice: 3500}, []string{"2", "3"}},
		{"price range", Filter{MinPrice: 3000, MaxPrice: 50000}, []string{"3", "4"}},
		{"featured", Filter{Featured: true}, []string{"1"}},
		{"query matches description", Filter{Query: "Fenced"}, []string{"3"}},
		{"combined", Filter{Category: CategoryLand, MaxPrice: 50000}, []string{"4"}},
		{"no match", Filter{Location: "Gumani"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(list))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
