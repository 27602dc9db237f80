package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/dealbridge/negotiation-api/internal/config"
	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client generates buyer-side negotiation replies via the Google Generative
// AI API. It implements the reply generator interface consumed by the
// negotiation service.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	cfg    config.AIConfig
}

// NewClient creates a Gemini-backed reply generator
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generative ai client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))

	return &Client{
		client: client,
		model:  model,
		cfg:    *cfg,
	}, nil
}

// Propose generates the buyer's next turn for the given negotiation state
func (c *Client) Propose(ctx context.Context, pc domain.PromptContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TimeoutDuration())
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(pc)))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", part)
	}

	reply := strings.TrimSpace(string(text))
	if reply == "" {
		return "", fmt.Errorf("blank reply from model")
	}
	return reply, nil
}

// Close releases the underlying API client
func (c *Client) Close() error {
	return c.client.Close()
}

func buildPrompt(pc domain.PromptContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a professional procurement negotiator representing the buyer %s of %s in the negotiation %q.\n",
		pc.BuyerName, pc.CompanyName, pc.NegotiationName)
	fmt.Fprintf(&b, "Your goal is to reach the buyer's target values. All amounts are in %s.\n\n", pc.Currency)

	b.WriteString("CURRENT NEGOTIATION STATUS:\n")
	for _, t := range pc.Terms {
		label := t.Label
		if t.ItemName != "" {
			label = t.ItemName + " / " + label
		}
		fmt.Fprintf(&b, "- %s: target %s", label, t.TargetValue)
		if t.QuotedValue != "" {
			fmt.Fprintf(&b, ", supplier quoted %s", t.QuotedValue)
		}
		if t.CurrentValue != "" {
			fmt.Fprintf(&b, ", current %s", t.CurrentValue)
		}
		if t.AgreedValue != "" {
			fmt.Fprintf(&b, ", agreed %s", t.AgreedValue)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRECENT CONVERSATION:\n")
	for _, m := range pc.RecentMessages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role.Display(), m.Content)
	}

	fmt.Fprintf(&b, "\nSUPPLIER'S LATEST MESSAGE:\n%s\n\n", pc.SupplierMessage)

	if pc.EarlyStage() {
		b.WriteString("The negotiation is in an early stage. Stand firm on the target values and do not concede yet.\n")
	} else {
		b.WriteString("The negotiation is advanced. You may propose reasonable middle-ground values to close remaining gaps.\n")
	}

	b.WriteString("Respond as the buyer in plain text. Be concise and professional. " +
		"Do not use markdown formatting. Address the supplier's points directly.")

	return b.String()
}
