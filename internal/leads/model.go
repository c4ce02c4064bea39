package leads

import (
	"regexp"
	"time"
)

// FieldSet is the accumulated qualification record for a single chat session.
// Fields start empty and are filled in as the conversation reveals them; a
// later turn may overwrite a field with a new non-empty value but never
// clears one.
type FieldSet struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	VehicleType string `json:"vehicle_type,omitempty"`
	MakeModel   string `json:"make_model,omitempty"`
	NewOrUsed   string `json:"new_or_used,omitempty"`
	Budget      string `json:"budget,omitempty"`
	TradeIn     string `json:"trade_in,omitempty"`
	Financing   string `json:"financing,omitempty"`
	Priorities  string `json:"priorities,omitempty"`
}

// fieldWeights drives scoring, the collected/missing split, and the order in
// which the assistant works through unanswered questions. Weights sum to 100.
var fieldWeights = []struct {
	name   string
	weight int
	get    func(*FieldSet) string
	set    func(*FieldSet, string)
}{
	{"email", 20, func(f *FieldSet) string { return f.Email }, func(f *FieldSet, v string) { f.Email = v }},
	{"phone", 20, func(f *FieldSet) string { return f.Phone }, func(f *FieldSet, v string) { f.Phone = v }},
	{"budget", 15, func(f *FieldSet) string { return f.Budget }, func(f *FieldSet, v string) { f.Budget = v }},
	{"name", 10, func(f *FieldSet) string { return f.Name }, func(f *FieldSet, v string) { f.Name = v }},
	{"vehicle type", 10, func(f *FieldSet) string { return f.VehicleType }, func(f *FieldSet, v string) { f.VehicleType = v }},
	{"make/model", 10, func(f *FieldSet) string { return f.MakeModel }, func(f *FieldSet, v string) { f.MakeModel = v }},
	{"new or used", 5, func(f *FieldSet) string { return f.NewOrUsed }, func(f *FieldSet, v string) { f.NewOrUsed = v }},
	{"financing", 5, func(f *FieldSet) string { return f.Financing }, func(f *FieldSet, v string) { f.Financing = v }},
	{"trade-in", 5, func(f *FieldSet) string { return f.TradeIn }, func(f *FieldSet, v string) { f.TradeIn = v }},
}

// Score returns the qualification score in [0,100]: the sum of the weights of
// all populated fields. Priorities carries no weight; it is color for the
// sales follow-up, not a qualification signal.
func (f *FieldSet) Score() int {
	score := 0
	for _, fw := range fieldWeights {
		if fw.get(f) != "" {
			score += fw.weight
		}
	}
	return score
}

// Merge folds newly extracted values into the accumulated set. Incoming
// non-empty values overwrite; empty values never clear what a prior turn
// collected.
func (f *FieldSet) Merge(in FieldSet) {
	for _, fw := range fieldWeights {
		if v := fw.get(&in); v != "" {
			fw.set(f, v)
		}
	}
	if in.Priorities != "" {
		f.Priorities = in.Priorities
	}
}

// Collected returns the display names of populated weighted fields, in weight
// order.
func (f *FieldSet) Collected() []string {
	var out []string
	for _, fw := range fieldWeights {
		if fw.get(f) != "" {
			out = append(out, fw.name)
		}
	}
	return out
}

// Missing returns the display names of unpopulated weighted fields, in weight
// order, so the highest-value gap is asked about first.
func (f *FieldSet) Missing() []string {
	var out []string
	for _, fw := range fieldWeights {
		if fw.get(f) == "" {
			out = append(out, fw.name)
		}
	}
	return out
}

var validEmailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s is a syntactically plausible email address.
// This is the gate for the qualification trigger: a high score without a
// deliverable address is not an actionable lead.
func ValidEmail(s string) bool {
	return validEmailRE.MatchString(s)
}

// Turn is one message of the conversation snapshot stored with a lead.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Lead is the persisted record for a qualified session. Exactly one row
// exists per session identifier; re-qualification updates it in place.
type Lead struct {
	ID        int64     `json:"id,omitempty"`
	SessionID string    `json:"session_id"`
	FieldSet
	Score     int       `json:"qualification_score"`
	History   []Turn    `json:"conversation_history,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewLead builds the persistable record for a session snapshot.
func NewLead(sessionID string, fields FieldSet, history []Turn) *Lead {
	return &Lead{
		SessionID: sessionID,
		FieldSet:  fields,
		Score:     fields.Score(),
		History:   history,
	}
}
