package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/elyriond/llmmail/internal/ai"
	"github.com/elyriond/llmmail/internal/campaign"
	"github.com/elyriond/llmmail/internal/dressipi"
	"github.com/elyriond/llmmail/internal/imagegen"
	"github.com/elyriond/llmmail/internal/models"
	"github.com/elyriond/llmmail/internal/personalize"
	"github.com/elyriond/llmmail/internal/scanner"
	"github.com/elyriond/llmmail/internal/store"
)

// fakePipeline records the last request and returns a canned outcome,
// emitting events to the sink first.
type fakePipeline struct {
	outcome     *campaign.Outcome
	events      []campaign.Event
	lastRequest campaign.Request
	lastRefine  campaign.RefineRequest
	calls       int
}

func (f *fakePipeline) Generate(ctx context.Context, req campaign.Request, sink campaign.Sink) *campaign.Outcome {
	f.calls++
	f.lastRequest = req
	f.emit(sink)
	return f.outcome
}

func (f *fakePipeline) Refine(ctx context.Context, req campaign.RefineRequest, sink campaign.Sink) *campaign.Outcome {
	f.calls++
	f.lastRefine = req
	f.emit(sink)
	return f.outcome
}

func (f *fakePipeline) emit(sink campaign.Sink) {
	if sink == nil {
		return
	}
	for _, e := range f.events {
		sink.Emit(e)
	}
}

type fakeProfiles struct {
	profile  *models.ClientProfile
	err      error
	upserted *models.ClientProfile
}

func (f *fakeProfiles) Get() (*models.ClientProfile, error) { return f.profile, f.err }

func (f *fakeProfiles) Upsert(p *models.ClientProfile) (*models.ClientProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserted = p
	f.profile = p
	return p, nil
}

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	fail    bool
}

func (f *fakeImages) Generate(ctx context.Context, prompt string, opts imagegen.Options) imagegen.Result {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.fail {
		return imagegen.Result{OriginalPrompt: prompt, Error: "provider down"}
	}
	return imagegen.Result{Success: true, ImageURL: "/images/x.png", OriginalPrompt: prompt, RevisedPrompt: prompt}
}

type fakeModerator struct {
	flagged []string
	calls   int
}

func (f *fakeModerator) CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error) {
	f.calls++
	if len(f.flagged) > 0 {
		return &ai.ModerationResult{Categories: f.flagged}, nil
	}
	return &ai.ModerationResult{Safe: true}, nil
}

type fakeRecommender struct {
	payload   *dressipi.Payload
	err       error
	target    dressipi.Target
	itemID    string
	query     url.Values
	callCount int
}

func (f *fakeRecommender) FetchRelated(ctx context.Context, target dressipi.Target, seedItemID string, query url.Values) (*dressipi.Payload, error) {
	f.callCount++
	f.target, f.itemID, f.query = target, seedItemID, query
	return f.payload, f.err
}

type fakeFlusher struct{ removed int }

func (f *fakeFlusher) InvalidateAll(ctx context.Context) int { return f.removed }

// memTemplates is an in-memory TemplateStore.
type memTemplates struct {
	items map[uuid.UUID]*models.EmailTemplate
}

func newMemTemplates() *memTemplates {
	return &memTemplates{items: map[uuid.UUID]*models.EmailTemplate{}}
}

func (m *memTemplates) List(limit, offset int) ([]models.EmailTemplate, error) {
	out := []models.EmailTemplate{}
	for _, t := range m.items {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memTemplates) FindByID(id uuid.UUID) (*models.EmailTemplate, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (m *memTemplates) Create(t *models.EmailTemplate) (*models.EmailTemplate, error) {
	for _, existing := range m.items {
		if existing.Name == t.Name {
			return nil, store.ErrDuplicateName
		}
	}
	c := *t
	c.ID = uuid.New()
	m.items[c.ID] = &c
	return &c, nil
}

func (m *memTemplates) Update(t *models.EmailTemplate) error {
	if _, ok := m.items[t.ID]; !ok {
		return store.ErrNotFound
	}
	c := *t
	m.items[t.ID] = &c
	return nil
}

func (m *memTemplates) Delete(id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// memPresets is an in-memory PresetStore.
type memPresets struct {
	items []models.LookAndFeel
}

func (m *memPresets) List() ([]models.LookAndFeel, error) { return m.items, nil }

func (m *memPresets) Create(l *models.LookAndFeel) (*models.LookAndFeel, error) {
	for _, p := range m.items {
		if p.Name == l.Name {
			return nil, store.ErrDuplicateName
		}
	}
	c := *l
	c.ID = uuid.New()
	m.items = append(m.items, c)
	return &c, nil
}

func (m *memPresets) Delete(id uuid.UUID) error {
	for i, p := range m.items {
		if p.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeScanner struct {
	report *scanner.Report
	err    error
	url    string
}

func (f *fakeScanner) Scan(ctx context.Context, rawURL string) (*scanner.Report, error) {
	f.url = rawURL
	return f.report, f.err
}

type fakeProviders struct{}

func (fakeProviders) Available() []string           { return []string{"gemini", "openai"} }
func (fakeProviders) ActiveName() string            { return "openai" }
func (fakeProviders) ActiveImageName() string       { return "gemini" }
func (fakeProviders) SupportsImageGeneration() bool { return true }
func (fakeProviders) HasModerator() bool            { return false }

var _ Previewer = (*personalize.Renderer)(nil)

// do sends a request through handler and decodes the JSON response body.
func do(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, out
}
