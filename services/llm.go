package services

import (
	"context"
	"fmt"
	"strings"

	"lexfund_crm_go/config"
	"lexfund_crm_go/models"

	"google.golang.org/genai"
)

// MessageDraft is a generated outbound message
type MessageDraft struct {
	Subject string
	Body    string
}

// LLMDrafter generates communication drafts using the Gemini API
type LLMDrafter struct {
	client *genai.Client
	model  string
}

// Drafter is the global LLM drafter instance; nil when no API key is configured
var Drafter *LLMDrafter

// InitializeDrafter sets up the global drafter. Returns nil without
// error when no API key is configured; drafting endpoints then report
// the feature as unavailable.
func InitializeDrafter(ctx context.Context, cfg *config.Config) (*LLMDrafter, error) {
	if cfg.GeminiAPIKey == "" {
		Drafter = nil
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	Drafter = &LLMDrafter{client: client, model: cfg.GeminiModel}
	return Drafter, nil
}

const drafterSystemPrompt = `You write outbound client messages for a pre-settlement legal funding company.
Be professional, warm, and plain-spoken. Never promise a funding decision or legal outcome.
Never include placeholder brackets; write the complete message using the facts provided.
For EMAIL, start your reply with a line "Subject: ..." followed by a blank line and the body.
For SMS, reply with the message text only, at most 320 characters.`

// DraftCommunication generates a subject and body for an outbound
// message about the given case.
func (d *LLMDrafter) DraftCommunication(ctx context.Context, channel, purpose string, plaintiff *models.Plaintiff, caseRecord *models.Case) (*MessageDraft, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Channel: %s\n", channel)
	fmt.Fprintf(&sb, "Purpose: %s\n", purpose)
	if plaintiff != nil {
		fmt.Fprintf(&sb, "Plaintiff: %s\n", plaintiff.FullName())
	}
	if caseRecord != nil {
		fmt.Fprintf(&sb, "Case number: %s\n", caseRecord.CaseNumber)
		fmt.Fprintf(&sb, "Case type: %s\n", caseRecord.CaseType)
		fmt.Fprintf(&sb, "Funding status: %s\n", caseRecord.FundingStatus)
		if caseRecord.LawFirm.ID != "" {
			fmt.Fprintf(&sb, "Law firm: %s\n", caseRecord.LawFirm.Name)
		}
	}

	result, err := d.client.Models.GenerateContent(ctx,
		d.model,
		genai.Text(sb.String()),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(drafterSystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI draft failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("empty draft returned")
	}

	return parseDraft(channel, text), nil
}

// parseDraft splits a "Subject: ..." header off an email draft
func parseDraft(channel, text string) *MessageDraft {
	draft := &MessageDraft{Body: text}
	if channel != models.ChannelEmail {
		return draft
	}

	lines := strings.SplitN(text, "\n", 2)
	if strings.HasPrefix(strings.ToLower(lines[0]), "subject:") {
		draft.Subject = strings.TrimSpace(lines[0][len("subject:"):])
		if len(lines) == 2 {
			draft.Body = strings.TrimSpace(lines[1])
		} else {
			draft.Body = ""
		}
	}
	return draft
}
