package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_EmptyFieldSet(t *testing.T) {
	var f FieldSet
	assert.Equal(t, 0, f.Score())
}

func TestScore_FullFieldSetIsHundred(t *testing.T) {
	f := FieldSet{
		Name: "Ana", Email: "ana@example.com", Phone: "5551234567",
		VehicleType: "SUV", MakeModel: "RAV4", NewOrUsed: "new",
		Budget: "$30k", TradeIn: "2015 Corolla", Financing: "loan",
	}
	assert.Equal(t, 100, f.Score())
}

func TestScore_WeightsPerField(t *testing.T) {
	cases := []struct {
		name   string
		fields FieldSet
		want   int
	}{
		{"email only", FieldSet{Email: "a@b.com"}, 20},
		{"phone only", FieldSet{Phone: "5551234567"}, 20},
		{"budget only", FieldSet{Budget: "$20k"}, 15},
		{"name only", FieldSet{Name: "Ana"}, 10},
		{"vehicle type only", FieldSet{VehicleType: "truck"}, 10},
		{"make model only", FieldSet{MakeModel: "F-150"}, 10},
		{"new or used only", FieldSet{NewOrUsed: "used"}, 5},
		{"financing only", FieldSet{Financing: "cash"}, 5},
		{"trade in only", FieldSet{TradeIn: "none"}, 5},
		{"priorities carry no weight", FieldSet{Priorities: "safety"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fields.Score())
		})
	}
}

func TestScore_RecomputedFromScratch(t *testing.T) {
	f := FieldSet{Email: "a@b.com", Budget: "$20k"}
	assert.Equal(t, 35, f.Score())

	// Scoring is a pure function of the current set, calling it again
	// changes nothing.
	assert.Equal(t, 35, f.Score())

	f.Phone = "5551234567"
	assert.Equal(t, 55, f.Score())
}

func TestMerge_NonEmptyOverwrites(t *testing.T) {
	f := FieldSet{Name: "Ana", Budget: "$20k"}
	f.Merge(FieldSet{Budget: "$25k", Email: "ana@example.com"})

	assert.Equal(t, "Ana", f.Name)
	assert.Equal(t, "$25k", f.Budget)
	assert.Equal(t, "ana@example.com", f.Email)
}

func TestMerge_EmptyNeverClears(t *testing.T) {
	f := FieldSet{Email: "ana@example.com", Priorities: "towing"}
	f.Merge(FieldSet{})

	assert.Equal(t, "ana@example.com", f.Email)
	assert.Equal(t, "towing", f.Priorities)
}

func TestCollectedAndMissing_WeightOrder(t *testing.T) {
	f := FieldSet{Phone: "5551234567", Name: "Ana", TradeIn: "none"}

	assert.Equal(t, []string{"phone", "name", "trade-in"}, f.Collected())
	assert.Equal(t, []string{"email", "budget", "vehicle type", "make/model", "new or used", "financing"}, f.Missing())
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("ana@example.com"))
	assert.True(t, ValidEmail("ana.torres+car@example.co.uk"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("ana@example"))
	assert.False(t, ValidEmail("ana example@example.com"))
}

func TestNewLead_ScoresSnapshot(t *testing.T) {
	fields := FieldSet{Email: "ana@example.com", Phone: "5551234567", Budget: "$30k", Name: "Ana"}
	history := []Turn{{Role: "user", Content: "hi"}}

	lead := NewLead("sess-1", fields, history)
	assert.Equal(t, "sess-1", lead.SessionID)
	assert.Equal(t, 65, lead.Score)
	assert.Len(t, lead.History, 1)
}
