package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// Phone shapes with at least 7 digits, optional country code and common
	// separators. Loose on purpose: shoppers paste numbers every which way.
	phoneRE = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{5,}\d`)
)

const extractorPrompt = `You extract lead qualification details from a car dealership chat. Respond with JSON only.

Read the shopper's messages and fill in any of these fields you can. Use "" for anything not mentioned. Never guess.

{"name": "", "vehicle_type": "", "make_model": "", "new_or_used": "", "budget": "", "trade_in": "", "financing": "", "priorities": ""}

- name: the shopper's own name, if they gave it
- vehicle_type: body style they want (SUV, truck, sedan, minivan, ...)
- make_model: specific make or model mentioned as what they want
- new_or_used: "new", "used", or "either" if stated
- budget: their price range or monthly payment target, verbatim
- trade_in: what they said about trading in a vehicle
- financing: what they said about financing, leasing, or paying cash
- priorities: what matters most to them (safety, fuel economy, towing, ...)

Shopper's messages:
%s`

// FieldExtractor pulls qualification fields out of a shopper's messages.
// Email and phone come from regexes and are authoritative; everything else
// comes from a best-effort LLM parse.
type FieldExtractor struct {
	llm    LLMClient
	model  string
	logger *logging.Logger
}

// NewFieldExtractor creates an extractor. llm may be nil, in which case only
// the deterministic email and phone passes run.
func NewFieldExtractor(llm LLMClient, model string, logger *logging.Logger) *FieldExtractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &FieldExtractor{llm: llm, model: model, logger: logger}
}

// Extract returns the fields found in the given user messages. Extraction
// never fails the turn: an LLM error or unparseable response degrades to
// whatever the deterministic passes found.
func (e *FieldExtractor) Extract(ctx context.Context, userMessages []string) leads.FieldSet {
	var out leads.FieldSet
	if len(userMessages) == 0 {
		return out
	}

	semantic := e.extractSemantic(ctx, userMessages)
	out.Merge(semantic)

	// Regex results overwrite whatever the model produced for the contact
	// fields. Later messages win so a corrected address replaces a typo.
	for _, msg := range userMessages {
		if m := emailRE.FindAllString(msg, -1); len(m) > 0 {
			out.Email = m[len(m)-1]
		}
		for _, cand := range phoneRE.FindAllString(msg, -1) {
			if digits := countDigits(cand); digits >= 7 && digits <= 15 {
				out.Phone = strings.TrimSpace(cand)
			}
		}
	}

	return out
}

func (e *FieldExtractor) extractSemantic(ctx context.Context, userMessages []string) leads.FieldSet {
	var out leads.FieldSet
	if e.llm == nil {
		return out
	}

	prompt := fmt.Sprintf(extractorPrompt, strings.Join(userMessages, "\n"))
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:        e.model,
		Messages:     []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:    300,
		JSONResponse: true,
	})
	if err != nil {
		e.logger.Warn("field extraction LLM call failed, keeping regex results only", "error", err)
		return out
	}

	// The model might wrap the JSON in prose; take the outermost object.
	content := strings.TrimSpace(resp.Text)
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var raw struct {
		Name        string `json:"name"`
		VehicleType string `json:"vehicle_type"`
		MakeModel   string `json:"make_model"`
		NewOrUsed   string `json:"new_or_used"`
		Budget      string `json:"budget"`
		TradeIn     string `json:"trade_in"`
		Financing   string `json:"financing"`
		Priorities  string `json:"priorities"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		e.logger.Warn("field extraction response was not valid JSON, keeping regex results only", "error", err)
		return out
	}

	out.Name = sanitizeValue(raw.Name)
	out.VehicleType = sanitizeValue(raw.VehicleType)
	out.MakeModel = sanitizeValue(raw.MakeModel)
	out.NewOrUsed = sanitizeValue(raw.NewOrUsed)
	out.Budget = sanitizeValue(raw.Budget)
	out.TradeIn = sanitizeValue(raw.TradeIn)
	out.Financing = sanitizeValue(raw.Financing)
	out.Priorities = sanitizeValue(raw.Priorities)
	return out
}

// sanitizeValue drops the placeholder strings models emit instead of leaving
// a field empty.
func sanitizeValue(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "unknown", "null", "n/a", "na", "none", "not mentioned", "not specified", "not provided":
		return ""
	}
	return v
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
