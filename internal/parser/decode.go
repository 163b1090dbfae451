package parser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/domain"
)

// candidateWire is the JSON shape the model is instructed to return.
// Pointers keep null and absent distinguishable from zero values.
type candidateWire struct {
	Amount *decimal.Decimal `json:"amount"`
	Type   *string          `json:"type"`
	Bank   *string          `json:"bank"`
	Date   *string          `json:"date"`
	Time   *string          `json:"time"`
}

// decodeCandidate turns raw model text into a candidate. Structural problems
// (non-JSON, wrong shape) wrap ErrBadOutput; semantic gaps (null amount or
// type) are NOT errors here, completeness is the pipeline's call.
func decodeCandidate(raw string) (domain.Candidate, error) {
	clean := cleanModelJSON(raw)

	var wire candidateWire
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return domain.Candidate{}, fmt.Errorf("decode candidate: %v: %w", err, ErrBadOutput)
	}

	c := domain.Candidate{}

	if wire.Amount != nil {
		amount := wire.Amount.Abs()
		c.Amount = &amount
	}
	if wire.Type != nil {
		t := domain.TransactionType(strings.ToLower(strings.TrimSpace(*wire.Type)))
		// An unknown label is as useless as no label.
		if t.Valid() {
			c.Type = t
		}
	}
	if wire.Bank != nil {
		c.Bank = strings.TrimSpace(*wire.Bank)
	}
	if wire.Date != nil {
		d := strings.TrimSpace(*wire.Date)
		if _, err := time.Parse(domain.DateFormat, d); err == nil {
			c.Date = d
		}
	}
	if wire.Time != nil {
		c.Time = strings.TrimSpace(*wire.Time)
	}

	return c, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk the model may
// emit despite instructions, keeping only the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
