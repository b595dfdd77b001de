package level

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("level not found")
	ErrCopilotNotFound = errors.New("copilot not found")
)

type (
	// Level is one grade of the institute (e.g. "Primero Medio").
	Level struct {
		ID      uuid.UUID `json:"id"`
		Name    string    `json:"name"`
		Ordinal int       `json:"ordinal"`
	}

	// LevelSubject is one subject track within a level; module calendars and
	// evaluations hang off these.
	LevelSubject struct {
		ID      uuid.UUID `json:"id"`
		LevelID uuid.UUID `json:"levelId"`
		Subject string    `json:"subject"`
	}

	// GeminiCopilot is the study assistant configured for a level.
	GeminiCopilot struct {
		ID        uuid.UUID `json:"id"`
		LevelID   uuid.UUID `json:"levelId"`
		Name      string    `json:"name"`
		PromptURL string    `json:"promptUrl"`
	}

	// Plan is one purchasable enrollment option for a level. Pricing is an
	// injected dataset (assets/plans.json), never hardcoded.
	Plan struct {
		ID            string   `json:"id"`
		LevelOrdinal  int      `json:"levelOrdinal"`
		Name          string   `json:"name"`
		PriceCLP      int      `json:"priceClp"`
		BillingPeriod string   `json:"billingPeriod"` // monthly | yearly
		Features      []string `json:"features"`
		CheckoutURL   string   `json:"checkoutUrl"`
	}
)
