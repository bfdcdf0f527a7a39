// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package campaign sequences the generation pipeline: brief, brand
// extraction, images, copy (with recommendations fetched alongside) and
// HTML assembly. Progress is reported through a Sink.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elyriond/llmmail/internal/ai"
	"github.com/elyriond/llmmail/internal/creative"
	"github.com/elyriond/llmmail/internal/dressipi"
	"github.com/elyriond/llmmail/internal/extract"
	"github.com/elyriond/llmmail/internal/imagegen"
)

// ContentAdapter runs the chat-completion stages.
type ContentAdapter interface {
	AnalyzeBrief(ctx context.Context, userPrompt string, profile *creative.BrandProfile) creative.BriefResult
	RefineBrief(ctx context.Context, originalBrief string, answers map[string]string) creative.BriefResult
	GenerateCopy(ctx context.Context, briefText string) creative.CopyResult
	AssembleHTML(ctx context.Context, contentText string, style extract.BrandStyle, images []creative.GeneratedImage) creative.HTMLResult
}

// ImageAdapter generates one image per call.
type ImageAdapter interface {
	Generate(ctx context.Context, prompt string, opts imagegen.Options) imagegen.Result
}

// Recommender fetches related products.
type Recommender interface {
	FetchRelated(ctx context.Context, target dressipi.Target, seedItemID string, query url.Values) (*dressipi.Payload, error)
}

// Moderator screens user input before any generation.
type Moderator interface {
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// RecommendationSeed selects the product the recommendations relate to.
type RecommendationSeed struct {
	Target dressipi.Target `json:"target"`
	ItemID string          `json:"itemId"`
	Query  url.Values      `json:"query,omitempty"`
}

// Request starts a campaign from a natural-language prompt.
type Request struct {
	Prompt             string
	BrandDefaults      extract.BrandStyle
	Profile            *creative.BrandProfile
	RecommendationSeed *RecommendationSeed
	ImageOptions       imagegen.Options
}

// RefineRequest continues a campaign from a brief and the answers to its
// clarifying questions.
type RefineRequest struct {
	OriginalBrief      string
	Answers            map[string]string
	BrandDefaults      extract.BrandStyle
	RecommendationSeed *RecommendationSeed
	ImageOptions       imagegen.Options
}

// Orchestrator runs campaigns. It holds no per-request state and is safe
// for concurrent use.
type Orchestrator struct {
	content     ContentAdapter
	images      ImageAdapter
	recommender Recommender
	moderator   Moderator
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecommender enables recommendation enrichment for requests that
// carry a seed.
func WithRecommender(r Recommender) Option {
	return func(o *Orchestrator) { o.recommender = r }
}

// WithModerator screens prompts before generation.
func WithModerator(m Moderator) Option {
	return func(o *Orchestrator) { o.moderator = m }
}

// New creates an Orchestrator.
func New(content ContentAdapter, images ImageAdapter, opts ...Option) *Orchestrator {
	o := &Orchestrator{content: content, images: images}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs the full pipeline for req. sink may be nil.
func (o *Orchestrator) Generate(ctx context.Context, req Request, sink Sink) (out *Outcome) {
	em := newEmitter(sink)
	defer logOutcome("generate", time.Now(), &out)
	defer o.recoverTo(&out, em)

	if req.Profile == nil {
		return o.requiresSettings(em, "")
	}
	if msg := o.screen(ctx, req.Prompt); msg != "" {
		return o.fail(em, msg)
	}

	em.stage(StageAnalyzingBrief, "Analyzing your request and writing the creative brief", nil)
	brief := o.content.AnalyzeBrief(ctx, req.Prompt, req.Profile)
	if !brief.Success {
		return o.fail(em, "brief analysis failed: "+brief.Error)
	}

	return o.fromBrief(ctx, em, brief.BriefText, req.BrandDefaults, req.RecommendationSeed, req.ImageOptions)
}

// Refine rewrites a brief with the user's answers and runs the rest of the
// pipeline on it.
func (o *Orchestrator) Refine(ctx context.Context, req RefineRequest, sink Sink) (out *Outcome) {
	em := newEmitter(sink)
	defer logOutcome("refine", time.Now(), &out)
	defer o.recoverTo(&out, em)

	if msg := o.screen(ctx, answersText(req.Answers)); msg != "" {
		return o.fail(em, msg)
	}

	em.stage(StageAnalyzingBrief, "Refining the brief with your answers", nil)
	brief := o.content.RefineBrief(ctx, req.OriginalBrief, req.Answers)
	if !brief.Success {
		return o.fail(em, "brief refinement failed: "+brief.Error)
	}

	return o.fromBrief(ctx, em, brief.BriefText, req.BrandDefaults, req.RecommendationSeed, req.ImageOptions)
}

func (o *Orchestrator) fromBrief(ctx context.Context, em *emitter, brief string, defaults extract.BrandStyle, seed *RecommendationSeed, imgOpts imagegen.Options) *Outcome {
	if creative.RequiresSettings(brief) {
		return o.requiresSettings(em, brief)
	}
	if questions, ok := creative.Clarification(brief); ok && len(questions) > 0 {
		em.emit(Event{
			Stage:   StageNeedsClarification,
			Message: "A few details are needed before the campaign can be written",
			Data:    map[string]any{"questions": questions, "brief": brief},
		})
		return &Outcome{Status: StatusNeedsClarification, Questions: questions, Brief: brief}
	}

	em.stage(StageExtractingBrand, "Extracting brand colours, fonts and voice", map[string]any{"brief": brief})
	style := extract.Brand(brief).Merge(defaults)

	prompts := extract.ImagePrompts(brief)
	em.stage(StageGeneratingImages, fmt.Sprintf("Generating %d image(s)", len(prompts)),
		map[string]any{"brandStyle": style, "prompts": prompts})
	images, err := o.generateImages(ctx, prompts, imgOpts)
	if err != nil {
		return o.fail(em, err.Error())
	}

	em.stage(StageGeneratingCopy, "Writing the email copy", map[string]any{"images": images})
	if seed != nil && o.recommender != nil {
		em.stage(StageFetchingRecommendations, "Fetching product recommendations",
			map[string]any{"itemId": seed.ItemID})
	}

	copyText, recs, err := o.copyAndRecommendations(ctx, brief, seed)
	if err != nil {
		return o.fail(em, err.Error())
	}

	content := extract.Content(copyText)
	em.stage(StageAssemblingHTML, "Assembling the HTML email", map[string]any{"content": content})
	assembled := o.content.AssembleHTML(ctx, copyText, style, images)
	if !assembled.Success {
		return o.fail(em, "HTML assembly failed: "+assembled.Error)
	}

	doc := assembled.HTML
	if recs != nil && recs.Set != nil {
		doc = dressipi.Inject(doc, dressipi.RenderFragment(*recs.Set, style))
	}

	result := &CampaignResult{
		Success:         true,
		Content:         content,
		ContentText:     copyText,
		HTML:            doc,
		Images:          images,
		Brief:           brief,
		BrandStyle:      style,
		Recommendations: recs,
	}
	em.emit(Event{Stage: StageComplete, Message: "Campaign ready", Result: result})
	return &Outcome{Status: StatusSuccess, Result: result}
}

// generateImages runs one generation per prompt in order. The first
// failure aborts the stage.
func (o *Orchestrator) generateImages(ctx context.Context, prompts []string, opts imagegen.Options) ([]creative.GeneratedImage, error) {
	images := make([]creative.GeneratedImage, 0, len(prompts))
	for i, p := range prompts {
		res := o.images.Generate(ctx, p, opts)
		if !res.Success {
			return nil, fmt.Errorf("image %d generation failed: %s", i+1, res.Error)
		}
		images = append(images, creative.GeneratedImage{
			URL:           res.ImageURL,
			Prompt:        p,
			RevisedPrompt: res.RevisedPrompt,
		})
	}
	return images, nil
}

// copyAndRecommendations writes the copy and, when a seed is given, fetches
// recommendations at the same time. A recommendation failure is recorded
// in the returned block and never returned as an error.
func (o *Orchestrator) copyAndRecommendations(ctx context.Context, brief string, seed *RecommendationSeed) (string, *Recommendations, error) {
	var (
		g        errgroup.Group
		copyText string
		recs     *Recommendations
	)

	g.Go(func() (err error) {
		defer recoverErr(&err)
		res := o.content.GenerateCopy(ctx, brief)
		if !res.Success {
			return fmt.Errorf("copy generation failed: %s", res.Error)
		}
		copyText = res.ContentText
		return nil
	})

	if seed != nil && o.recommender != nil {
		g.Go(func() error {
			recs = o.fetchRecommendations(ctx, seed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return copyText, recs, nil
}

func (o *Orchestrator) fetchRecommendations(ctx context.Context, seed *RecommendationSeed) (recs *Recommendations) {
	recs = &Recommendations{ItemID: seed.ItemID}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recommendations panic", "panic", r)
			recs = &Recommendations{ItemID: seed.ItemID, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	payload, err := o.recommender.FetchRelated(ctx, seed.Target, seed.ItemID, seed.Query)
	if err != nil {
		slog.Warn("recommendations unavailable", "item_id", seed.ItemID, "error", err)
		recs.Error = err.Error()
		return recs
	}
	set := dressipi.Normalize(payload)
	recs.Payload = payload
	recs.Set = &set
	return recs
}

func (o *Orchestrator) screen(ctx context.Context, text string) string {
	return Screen(ctx, o.moderator, text)
}

// Screen returns a user-facing message when m flags text, or "" when the
// text may proceed. A nil moderator and moderation failures let the text
// through.
func Screen(ctx context.Context, m Moderator, text string) string {
	if m == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	res, err := m.CheckPrompt(ctx, text)
	if err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return ""
	}
	if res == nil || res.Safe {
		return ""
	}
	categories := strings.Join(res.Categories, ", ")
	slog.Warn("prompt flagged by moderation", "categories", categories)
	return fmt.Sprintf("Your prompt was flagged for: %s. Please reformulate your request and try again.", categories)
}

func (o *Orchestrator) requiresSettings(em *emitter, brief string) *Outcome {
	em.emit(Event{
		Stage:   StageRequiresSettings,
		Message: "Company settings are not configured. Set up the brand profile and try again.",
	})
	return &Outcome{Status: StatusRequiresSettings, Brief: brief}
}

func (o *Orchestrator) fail(em *emitter, msg string) *Outcome {
	slog.Warn("campaign failed", "error", msg)
	em.emit(Event{Stage: StageError, Error: msg})
	return &Outcome{Status: StatusError, Error: msg}
}

// recoverTo converts a panic in the pipeline into the error outcome.
func (o *Orchestrator) recoverTo(out **Outcome, em *emitter) {
	if r := recover(); r != nil {
		slog.Error("campaign panic recovered", "panic", r, "stack", string(debug.Stack()))
		*out = o.fail(em, fmt.Sprintf("internal error: %v", r))
	}
}

func logOutcome(op string, start time.Time, out **Outcome) {
	if *out != nil {
		slog.Info("campaign finished", "op", op, "status", (*out).Status, "duration", time.Since(start))
	}
}

// recoverErr turns a panic in a goroutine into its returned error.
func recoverErr(err *error) {
	if r := recover(); r != nil {
		slog.Error("campaign stage panic recovered", "panic", r, "stack", string(debug.Stack()))
		*err = fmt.Errorf("internal error: %v", r)
	}
}

// answersText flattens answers for moderation.
func answersText(answers map[string]string) string {
	var b strings.Builder
	for q, a := range answers {
		b.WriteString(q)
		b.WriteString("\n")
		b.WriteString(a)
		b.WriteString("\n")
	}
	return b.String()
}
