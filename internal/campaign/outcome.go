// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package campaign

import (
	"github.com/elyriond/llmmail/internal/creative"
	"github.com/elyriond/llmmail/internal/dressipi"
	"github.com/elyriond/llmmail/internal/extract"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusRequiresSettings   Status = "requires_settings"
	StatusNeedsClarification Status = "needs_clarification"
	StatusError              Status = "error"
)

// Outcome is the result of Generate or Refine. Exactly one of Result
// (success), Questions and Brief (needs_clarification) or Error (error)
// is meaningful for a given Status.
type Outcome struct {
	Status    Status          `json:"status"`
	Result    *CampaignResult `json:"result,omitempty"`
	Questions []string        `json:"questions,omitempty"`
	Brief     string          `json:"brief,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Recommendations is the enrichment block of a result. When Error is set
// the email was produced without the fragment.
type Recommendations struct {
	ItemID  string                      `json:"itemId"`
	Set     *dressipi.RecommendationSet `json:"set,omitempty"`
	Payload *dressipi.Payload           `json:"payload,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

// CampaignResult is the finished campaign.
type CampaignResult struct {
	Success         bool                      `json:"success"`
	Content         extract.EmailContent      `json:"content"`
	ContentText     string                    `json:"contentText"`
	HTML            string                    `json:"html"`
	Images          []creative.GeneratedImage `json:"images"`
	Brief           string                    `json:"brief"`
	BrandStyle      extract.BrandStyle        `json:"brandStyle"`
	Recommendations *Recommendations          `json:"recommendations,omitempty"`
}
