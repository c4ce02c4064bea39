package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

// Service formats and sends the sales-team alert for a qualified lead.
type Service struct {
	sender    EmailSender
	recipient string
	logger    *logging.Logger
}

// NewService creates a lead notification service. recipient is the sales
// inbox that receives qualified-lead alerts.
func NewService(sender EmailSender, recipient string, logger *logging.Logger) *Service {
	if sender == nil {
		panic("notify: email sender cannot be nil")
	}
	if recipient == "" {
		panic("notify: recipient cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, recipient: recipient, logger: logger}
}

// NotifyQualifiedLead emails the lead summary and full transcript to the
// sales inbox.
func (s *Service) NotifyQualifiedLead(ctx context.Context, lead *leads.Lead) error {
	name := lead.Name
	if name == "" {
		name = "Unknown"
	}

	msg := EmailMessage{
		To:      s.recipient,
		Subject: fmt.Sprintf("New Qualified Lead: %s", name),
		Body:    formatLeadBody(lead),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: qualified lead email: %w", err)
	}

	s.logger.Info("qualified lead notification sent",
		"session_id", lead.SessionID,
		"score", lead.Score,
	)
	return nil
}

func formatLeadBody(lead *leads.Lead) string {
	var b strings.Builder

	b.WriteString("New qualified lead from the showroom chat assistant.\n\n")
	b.WriteString("LEAD INFORMATION\n")
	b.WriteString("================\n")
	writeField(&b, "Name", lead.Name)
	writeField(&b, "Email", lead.Email)
	writeField(&b, "Phone", lead.Phone)
	writeField(&b, "Vehicle type", lead.VehicleType)
	writeField(&b, "Make/model", lead.MakeModel)
	writeField(&b, "New or used", lead.NewOrUsed)
	writeField(&b, "Budget", lead.Budget)
	writeField(&b, "Trade-in", lead.TradeIn)
	writeField(&b, "Financing", lead.Financing)
	writeField(&b, "Priorities", lead.Priorities)
	fmt.Fprintf(&b, "Score: %d/100\n", lead.Score)

	if len(lead.History) > 0 {
		divider := strings.Repeat("=", 60)
		fmt.Fprintf(&b, "\n%s\nCONVERSATION TRANSCRIPT\n%s\n\n", divider, divider)
		for _, turn := range lead.History {
			role := strings.ToUpper(turn.Role)
			ts := ""
			if !turn.Timestamp.IsZero() {
				ts = turn.Timestamp.Format("2006-01-02 15:04:05 MST")
			}
			fmt.Fprintf(&b, "%s (%s):\n%s\n\n", role, ts, turn.Content)
		}
		b.WriteString(divider + "\n")
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
