package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

type captureSender struct {
	sent []EmailMessage
	err  error
}

func (c *captureSender) Send(ctx context.Context, msg EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func TestNotifyQualifiedLead_FormatsSummaryAndTranscript(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "sales@drivelane.example", logging.Default())

	lead := &leads.Lead{
		SessionID: "sess-1",
		FieldSet: leads.FieldSet{
			Name:        "Ana Torres",
			Email:       "ana@example.com",
			Phone:       "555-867-5309",
			VehicleType: "SUV",
			Budget:      "around $35k",
		},
		Score: 75,
		History: []leads.Turn{
			{Role: "user", Content: "Hi, I'm Ana, looking for an SUV", Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
			{Role: "assistant", Content: "Happy to help! What's your budget?", Timestamp: time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)},
		},
	}

	require.NoError(t, svc.NotifyQualifiedLead(context.Background(), lead))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "sales@drivelane.example", msg.To)
	assert.Equal(t, "New Qualified Lead: Ana Torres", msg.Subject)
	assert.Contains(t, msg.Body, "Email: ana@example.com")
	assert.Contains(t, msg.Body, "Score: 75/100")
	assert.Contains(t, msg.Body, "CONVERSATION TRANSCRIPT")
	assert.Contains(t, msg.Body, "looking for an SUV")
	// Unfilled fields render as dashes, not blanks.
	assert.Contains(t, msg.Body, "Trade-in: -")
}

func TestNotifyQualifiedLead_UnknownName(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "sales@drivelane.example", logging.Default())

	err := svc.NotifyQualifiedLead(context.Background(), &leads.Lead{SessionID: "sess-2"})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "New Qualified Lead: Unknown", sender.sent[0].Subject)
}

func TestNotifyQualifiedLead_SenderFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	svc := NewService(sender, "sales@drivelane.example", logging.Default())

	err := svc.NotifyQualifiedLead(context.Background(), &leads.Lead{SessionID: "sess-3"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "qualified lead email"))
}
