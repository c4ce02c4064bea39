package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/drivelane/showroom-ai/internal/knowledge"
	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/internal/observability/metrics"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

// fallbackReply is returned when response generation fails. The shopper's
// message and any extracted fields are still recorded.
const fallbackReply = "Sorry, I'm having trouble responding right now. Please try again in a moment."

// LeadStore is the slice of the leads repository the engine needs.
type LeadStore interface {
	Upsert(ctx context.Context, lead *leads.Lead) (created bool, err error)
}

// LeadNotifier delivers the sales team alert for a newly qualified lead.
type LeadNotifier interface {
	NotifyQualifiedLead(ctx context.Context, lead *leads.Lead) error
}

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	SessionID string
	Message   string
	Sources   []string
	Score     int
	State     QualificationState
}

// Engine runs the conversation loop: retrieve context, extract fields, score,
// generate the reply, and hand off qualified leads.
type Engine struct {
	llm       LLMClient
	extractor *FieldExtractor
	sessions  SessionStore
	retriever knowledge.Retriever
	store     LeadStore
	notifier  LeadNotifier
	metrics   *metrics.ConversationMetrics
	logger    *logging.Logger
	tracer    trace.Tracer

	chatModel string
	topK      int
	threshold int
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithRetriever attaches a knowledge retriever. Without one, replies are
// generated from the conversation alone.
func WithRetriever(r knowledge.Retriever) EngineOption {
	return func(e *Engine) { e.retriever = r }
}

// WithLeadStore attaches the persistent lead store.
func WithLeadStore(s LeadStore) EngineOption {
	return func(e *Engine) { e.store = s }
}

// WithNotifier attaches the sales notification sender.
func WithNotifier(n LeadNotifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithMetrics attaches conversation metrics.
func WithMetrics(m *metrics.ConversationMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithChatModel overrides the provider's default chat model.
func WithChatModel(model string) EngineOption {
	return func(e *Engine) { e.chatModel = model }
}

// WithTopK sets how many knowledge entries are retrieved per turn.
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithThreshold sets the qualification score threshold.
func WithThreshold(t int) EngineOption {
	return func(e *Engine) {
		if t > 0 {
			e.threshold = t
		}
	}
}

// NewEngine creates a conversation engine.
func NewEngine(llm LLMClient, extractor *FieldExtractor, sessions SessionStore, logger *logging.Logger, opts ...EngineOption) *Engine {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if extractor == nil {
		panic("conversation: field extractor cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	e := &Engine{
		llm:       llm,
		extractor: extractor,
		sessions:  sessions,
		logger:    logger,
		tracer:    otel.Tracer("showroom.internal.conversation.engine"),
		topK:      3,
		threshold: 60,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Respond processes one shopper message and returns the assistant's reply.
// A blank sessionID starts a new session.
func (e *Engine) Respond(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "conversation.respond")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("showroom.session_id", sessionID))
	log := e.logger.With("session_id", sessionID)

	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	state.History = append(state.History, leads.Turn{
		Role:      ChatRoleUser,
		Content:   message,
		Timestamp: time.Now().UTC(),
	})

	// Retrieval and extraction are independent of each other; run them side
	// by side and join before generation.
	var (
		wg        sync.WaitGroup
		retrieved []knowledge.ScoredEntry
		extracted leads.FieldSet
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if e.retriever != nil {
			retrieved = e.retriever.Retrieve(ctx, message, e.topK)
		}
	}()
	go func() {
		defer wg.Done()
		extracted = e.extractor.Extract(ctx, userMessages(state.History))
	}()
	wg.Wait()

	state.Fields.Merge(extracted)
	score := state.Fields.Score()
	span.SetAttributes(attribute.Int("showroom.score", score))

	reply, genErr := e.generate(ctx, state, retrieved)
	if genErr != nil {
		span.RecordError(genErr)
		log.Error("reply generation failed", "error", genErr)
		e.metrics.ObserveTurn("generation_error", time.Since(start))
		// The shopper's turn and extracted fields are kept so the session
		// does not lose ground, but nothing downstream runs on a failed turn.
		if err := e.sessions.Save(ctx, state); err != nil {
			log.Error("session save failed", "error", err)
		}
		return &TurnResult{
			SessionID: sessionID,
			Message:   fallbackReply,
			Score:     score,
			State:     state.State,
		}, nil
	}

	state.History = append(state.History, leads.Turn{
		Role:      ChatRoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})

	e.qualify(ctx, log, state, score)

	if err := e.sessions.Save(ctx, state); err != nil {
		span.RecordError(err)
		log.Error("session save failed", "error", err)
	}

	e.metrics.ObserveTurn("ok", time.Since(start))
	return &TurnResult{
		SessionID: sessionID,
		Message:   reply,
		Sources:   sourceTitles(retrieved),
		Score:     score,
		State:     state.State,
	}, nil
}

func (e *Engine) generate(ctx context.Context, state *SessionState, retrieved []knowledge.ScoredEntry) (string, error) {
	messages := make([]ChatMessage, 0, len(state.History))
	for _, turn := range state.History {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.chatModel,
		System:      []string{BuildSystemPrompt(retrieved, state.Fields)},
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Text, nil
}

// qualify advances the session's lifecycle and hands a qualified lead to the
// store and notifier. Persistence failure leaves the state short of notified
// so a later turn retries; notification failure does not, a lead is alerted
// on at most once.
func (e *Engine) qualify(ctx context.Context, log *logging.Logger, state *SessionState, score int) {
	qualified := score >= e.threshold && leads.ValidEmail(state.Fields.Email)
	if !qualified {
		return
	}
	if state.State == StateUnqualified {
		state.State = StateQualified
		e.metrics.IncQualified()
	}

	if e.store == nil {
		return
	}

	lead := leads.NewLead(state.ID, state.Fields, state.History)
	created, err := e.store.Upsert(ctx, lead)
	if err != nil {
		log.Error("lead persistence failed, will retry next turn", "error", err)
		return
	}

	if state.State != StateQualified {
		return
	}
	state.State = StateNotified

	if e.notifier == nil {
		return
	}
	if !created {
		// A row already existed, meaning a previous process notified on this
		// session. The lifecycle state is authoritative within a session;
		// the created flag guards against double alerts across restarts.
		log.Info("lead already persisted, skipping notification")
		return
	}
	if err := e.notifier.NotifyQualifiedLead(ctx, lead); err != nil {
		e.metrics.IncNotifyFailure()
		log.Error("lead notification failed", "error", err)
	}
}

func userMessages(history []leads.Turn) []string {
	var out []string
	for _, t := range history {
		if t.Role == ChatRoleUser {
			out = append(out, t.Content)
		}
	}
	return out
}

func sourceTitles(entries []knowledge.ScoredEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Title != "" {
			out = append(out, e.Title)
		}
	}
	return out
}
