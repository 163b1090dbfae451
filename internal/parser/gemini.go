package parser

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/voznikov/banknote/internal/domain"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const basePrompt = "You are a parser for bank notification messages (SMS-style, any language).\n\n" +
	"Task:\n" +
	"- Extract the single transaction described by the message below.\n" +
	"- Output STRICT JSON only (no comments, no extra text).\n" +
	"- Output exactly one JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"amount\": number (absolute value, never negative) or null if not stated\n" +
	"- \"type\": \"income\" for deposits/credits, \"expense\" for withdrawals/debits, or null if unclear\n" +
	"- \"bank\": string naming the bank or sender, or null\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\", or null if not stated\n" +
	"- \"time\": string, 24h format \"HH:MM\", or null if not stated\n\n" +
	"Rules:\n" +
	"- Convert localized digits and thousand separators to a plain number.\n" +
	"- Convert any calendar the message uses to the Gregorian ISO date.\n" +
	"- Never guess an amount; use null when the message states none.\n" +
	"- Return ONLY valid raw JSON.\n" +
	"- Do NOT wrap the response in code fences or Markdown.\n" +
	"- Output must begin with \"{\" and end with \"}\".\n"

// Gemini parses bank messages with the Gemini API.
type Gemini struct {
	model  string
	apiKey string
	log    zerolog.Logger
}

// NewGemini creates a Gemini-backed parser. An empty apiKey lets the genai
// client fall back to its own environment lookup.
func NewGemini(model, apiKey string, log zerolog.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{model: model, apiKey: apiKey, log: log}
}

// Parse implements Parser.
func (g *Gemini) Parse(ctx context.Context, text string) (domain.Candidate, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("parse: create genai client: %w", err)
	}

	prompt := basePrompt + "\nMessage:\n" + text

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("parse: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return domain.Candidate{}, fmt.Errorf("parse: empty response from model: %w", ErrBadOutput)
	}

	candidate, err := decodeCandidate(rawText)
	if err != nil {
		g.log.Debug().Str("raw", rawText).Msg("Unusable model output")
		return domain.Candidate{}, err
	}

	return candidate, nil
}

var _ Parser = (*Gemini)(nil)
