package conversation

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOpenAI struct {
	lastChat  openai.ChatCompletionRequest
	chatResp  openai.ChatCompletionResponse
	chatErr   error
	embedResp openai.EmbeddingResponse
	embedErr  error
}

func (f *fakeOpenAI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastChat = req
	return f.chatResp, f.chatErr
}

func (f *fakeOpenAI) CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	return f.embedResp, f.embedErr
}

func TestOpenAIComplete_SystemPromptsPrepended(t *testing.T) {
	api := &fakeOpenAI{chatResp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "  hello there  "},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
	}}
	c := newOpenAIClient(api, "gpt-4o-mini", "")

	resp, err := c.Complete(context.Background(), LLMRequest{
		System:   []string{"be helpful"},
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", resp.Text)
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)
	require.Len(t, api.lastChat.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, api.lastChat.Messages[0].Role)
	assert.Equal(t, "be helpful", api.lastChat.Messages[0].Content)
}

func TestOpenAIComplete_JSONResponseFormat(t *testing.T) {
	api := &fakeOpenAI{chatResp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "{}"}}},
	}}
	c := newOpenAIClient(api, "", "")

	_, err := c.Complete(context.Background(), LLMRequest{
		Messages:     []ChatMessage{{Role: ChatRoleUser, Content: "extract"}},
		JSONResponse: true,
	})
	require.NoError(t, err)
	require.NotNil(t, api.lastChat.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, api.lastChat.ResponseFormat.Type)
}

func TestOpenAIComplete_NoChoices(t *testing.T) {
	api := &fakeOpenAI{chatResp: openai.ChatCompletionResponse{}}
	c := newOpenAIClient(api, "", "")

	_, err := c.Complete(context.Background(), LLMRequest{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestOpenAIEmbed_OrderedByIndex(t *testing.T) {
	api := &fakeOpenAI{embedResp: openai.EmbeddingResponse{
		Data: []openai.Embedding{
			{Index: 1, Embedding: []float32{0.2}},
			{Index: 0, Embedding: []float32{0.1}},
		},
	}}
	c := newOpenAIClient(api, "", "text-embedding-3-small")

	vecs, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.1}, vecs[0])
	assert.Equal(t, []float32{0.2}, vecs[1])
}

func TestOpenAIEmbed_CountMismatch(t *testing.T) {
	api := &fakeOpenAI{embedResp: openai.EmbeddingResponse{
		Data: []openai.Embedding{{Index: 0, Embedding: []float32{0.1}}},
	}}
	c := newOpenAIClient(api, "", "")

	_, err := c.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
}
