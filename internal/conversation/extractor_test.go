package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

type scriptedLLM struct {
	text string
	err  error
}

func (s *scriptedLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return LLMResponse{Text: s.text}, nil
}

func TestExtract_RegexOnlyWithoutLLM(t *testing.T) {
	e := NewFieldExtractor(nil, "", logging.Default())

	got := e.Extract(context.Background(), []string{
		"you can reach me at sam@example.com",
		"or call (555) 123-4567",
	})

	assert.Equal(t, "sam@example.com", got.Email)
	assert.Equal(t, "(555) 123-4567", got.Phone)
	assert.Empty(t, got.Name)
}

func TestExtract_LastEmailWins(t *testing.T) {
	e := NewFieldExtractor(nil, "", logging.Default())

	got := e.Extract(context.Background(), []string{
		"my email is sam@old.example.com",
		"actually use sam@new.example.com instead",
	})

	assert.Equal(t, "sam@new.example.com", got.Email)
}

func TestExtract_ShortNumberIsNotAPhone(t *testing.T) {
	e := NewFieldExtractor(nil, "", logging.Default())

	got := e.Extract(context.Background(), []string{"my budget is 30000 dollars"})
	assert.Empty(t, got.Phone)

	got = e.Extract(context.Background(), []string{"I bought it in 2019, around 42000 miles"})
	assert.Empty(t, got.Phone)
}

func TestExtract_ParenthesizedPhoneKeepsLeadingParen(t *testing.T) {
	e := NewFieldExtractor(nil, "", logging.Default())

	got := e.Extract(context.Background(), []string{"best number is (555) 867-5309"})
	assert.Equal(t, "(555) 867-5309", got.Phone)

	got = e.Extract(context.Background(), []string{"reach me at +1 (555) 123-4567"})
	assert.Equal(t, "+1 (555) 123-4567", got.Phone)
}

func TestExtract_RegexOverridesSemanticContactFields(t *testing.T) {
	llm := &scriptedLLM{text: `{"name": "Sam", "budget": "$30k"}`}
	e := NewFieldExtractor(llm, "", logging.Default())

	got := e.Extract(context.Background(), []string{"I'm Sam, sam@example.com, budget $30k"})
	assert.Equal(t, "Sam", got.Name)
	assert.Equal(t, "$30k", got.Budget)
	assert.Equal(t, "sam@example.com", got.Email)
}

func TestExtract_LLMFailureDegradesToRegex(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("rate limited")}
	e := NewFieldExtractor(llm, "", logging.Default())

	got := e.Extract(context.Background(), []string{"I'm Sam, sam@example.com"})
	assert.Equal(t, "sam@example.com", got.Email)
	assert.Empty(t, got.Name)
}

func TestExtract_UnparseableJSONDegradesToRegex(t *testing.T) {
	llm := &scriptedLLM{text: "I could not find any fields, sorry!"}
	e := NewFieldExtractor(llm, "", logging.Default())

	got := e.Extract(context.Background(), []string{"reach me at 555.867.5309"})
	assert.Equal(t, "555.867.5309", got.Phone)
	assert.Empty(t, got.Name)
}

func TestExtract_JSONWrappedInProse(t *testing.T) {
	llm := &scriptedLLM{text: "Here you go: {\"vehicle_type\": \"truck\", \"new_or_used\": \"used\"} hope that helps"}
	e := NewFieldExtractor(llm, "", logging.Default())

	got := e.Extract(context.Background(), []string{"looking for a used truck"})
	assert.Equal(t, "truck", got.VehicleType)
	assert.Equal(t, "used", got.NewOrUsed)
}

func TestExtract_PlaceholderValuesDropped(t *testing.T) {
	llm := &scriptedLLM{text: `{"name": "unknown", "budget": "N/A", "vehicle_type": "not mentioned", "priorities": "fuel economy"}`}
	e := NewFieldExtractor(llm, "", logging.Default())

	got := e.Extract(context.Background(), []string{"fuel economy matters to me"})
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Budget)
	assert.Empty(t, got.VehicleType)
	assert.Equal(t, "fuel economy", got.Priorities)
}

func TestExtract_NoMessages(t *testing.T) {
	e := NewFieldExtractor(&scriptedLLM{text: "{}"}, "", logging.Default())
	got := e.Extract(context.Background(), nil)
	assert.Empty(t, got.Collected())
}
