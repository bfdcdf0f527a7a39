// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- Helpers ----------

// captured holds the last request seen by a recording server.
type captured struct {
	path    string
	headers http.Header
	body    map[string]any
}

// newRecordingServer responds with status and body, recording each request.
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		c.body = map[string]any{}
		_ = json.Unmarshal(raw, &c.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

const openAIChatBody = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello from OpenAI"}}]}`

func requireProviderError(t *testing.T, err error, status int) *ProviderError {
	t.Helper()
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v (%T), want *ProviderError", err, err)
	}
	if pe.StatusCode != status {
		t.Errorf("StatusCode = %d, want %d", pe.StatusCode, status)
	}
	return pe
}

// =====================================================================
// OpenAI
// =====================================================================

func TestOpenAIGenerate_Success(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK, openAIChatBody)

	p := newOpenAI(ProviderConfig{APIKey: "sk-test-12345", Model: "gpt-4o", BaseURL: srv.URL + "/v1"})

	temp := 0.3
	got, err := p.Generate(context.Background(), Request{System: "sys", User: "usr", Temperature: &temp, JSON: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello from OpenAI" {
		t.Errorf("Generate = %q", got)
	}

	if !strings.HasSuffix(c.path, "/chat/completions") {
		t.Errorf("path = %q", c.path)
	}
	if auth := c.headers.Get("Authorization"); auth != "Bearer sk-test-12345" {
		t.Errorf("Authorization = %q", auth)
	}
	if c.body["model"] != "gpt-4o" {
		t.Errorf("model = %v", c.body["model"])
	}
	if c.body["temperature"] != 0.3 {
		t.Errorf("temperature = %v", c.body["temperature"])
	}
	rf, _ := c.body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", c.body["response_format"])
	}
	msgs, _ := c.body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", c.body["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("first message role = %v", first["role"])
	}
}

func TestOpenAIGenerate_ModelOverride(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK, openAIChatBody)
	p := newOpenAI(ProviderConfig{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL + "/v1"})

	if _, err := p.Generate(context.Background(), Request{User: "u", Model: "gpt-4o-mini"}); err != nil {
		t.Fatal(err)
	}
	if c.body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", c.body["model"])
	}
	if _, ok := c.body["temperature"]; ok {
		t.Error("temperature should be omitted when unset")
	}
}

func TestOpenAIGenerate_HTTPError(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		srv, _ := newRecordingServer(t, tt.status, `{"error":{"message":"upstream says no","type":"invalid_request_error"}}`)
		p := newOpenAI(ProviderConfig{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL + "/v1"})

		_, err := p.Generate(context.Background(), Request{User: "u"})
		pe := requireProviderError(t, err, tt.status)
		if pe.Transient() != tt.transient {
			t.Errorf("status %d: Transient = %v", tt.status, pe.Transient())
		}
	}
}

func TestOpenAIGenerate_EmptyChoices(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	p := newOpenAI(ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL + "/v1"})

	_, err := p.Generate(context.Background(), Request{User: "u"})
	requireProviderError(t, err, 0)
}

func TestOpenAIGenerate_CancelledContext(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, openAIChatBody)
	p := newOpenAI(ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL + "/v1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Generate(ctx, Request{User: "u"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestOpenAIGenerateImage(t *testing.T) {
	t.Run("hosted url", func(t *testing.T) {
		srv, c := newRecordingServer(t, http.StatusOK,
			`{"created":1,"data":[{"url":"https://img.example/a.png","revised_prompt":"a nicer cat"}]}`)
		p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})

		img, err := p.GenerateImage(context.Background(), ImageRequest{Prompt: "a cat", Size: "1792x1024", Quality: "standard", Style: "vivid"})
		if err != nil {
			t.Fatalf("GenerateImage: %v", err)
		}
		if img.URL != "https://img.example/a.png" || img.RevisedPrompt != "a nicer cat" || img.Data != nil {
			t.Errorf("img = %+v", img)
		}
		if !strings.HasSuffix(c.path, "/images/generations") {
			t.Errorf("path = %q", c.path)
		}
		if c.body["model"] != "dall-e-3" || c.body["size"] != "1792x1024" || c.body["style"] != "vivid" || c.body["quality"] != "standard" {
			t.Errorf("body = %v", c.body)
		}
	})

	t.Run("inline base64", func(t *testing.T) {
		srv, _ := newRecordingServer(t, http.StatusOK, `{"created":1,"data":[{"b64_json":"aGVsbG8="}]}`)
		p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})

		img, err := p.GenerateImage(context.Background(), ImageRequest{Prompt: "a cat"})
		if err != nil {
			t.Fatalf("GenerateImage: %v", err)
		}
		if string(img.Data) != "hello" || img.ContentType != "image/png" || img.URL != "" {
			t.Errorf("img = %+v", img)
		}
	})

	t.Run("safety rejection", func(t *testing.T) {
		srv, _ := newRecordingServer(t, http.StatusBadRequest,
			`{"error":{"message":"Your request was rejected by the safety system.","type":"invalid_request_error","code":"content_policy_violation"}}`)
		p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})

		_, err := p.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
		requireProviderError(t, err, http.StatusBadRequest)
	})
}

func TestOpenAIModerator(t *testing.T) {
	t.Run("flagged", func(t *testing.T) {
		srv, c := newRecordingServer(t, http.StatusOK, `{"id":"modr-1","model":"omni-moderation-latest","results":[
			{"flagged":true,"categories":{"hate":false,"hate/threatening":true,"self_harm":true},"category_scores":{},"category_applied_input_types":{}}]}`)
		m := newOpenAIModerator("k", srv.URL+"/v1")

		res, err := m.CheckSafety(context.Background(), "bad words")
		if err != nil {
			t.Fatalf("CheckSafety: %v", err)
		}
		if res.Safe {
			t.Error("Safe = true, want false")
		}
		if strings.Join(res.Categories, ",") != "hate (threatening),self harm" {
			t.Errorf("Categories = %v", res.Categories)
		}
		if c.body["input"] != "bad words" {
			t.Errorf("input = %v", c.body["input"])
		}
	})

	t.Run("clean", func(t *testing.T) {
		srv, _ := newRecordingServer(t, http.StatusOK, `{"id":"modr-2","model":"omni-moderation-latest","results":[{"flagged":false,"categories":{}}]}`)
		m := newOpenAIModerator("k", srv.URL+"/v1")

		res, err := m.CheckSafety(context.Background(), "summer sale")
		if err != nil || !res.Safe {
			t.Errorf("CheckSafety = %+v, %v", res, err)
		}
	})
}

// =====================================================================
// Mistral
// =====================================================================

func TestMistralGenerate(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK, openAIChatBody)
	p := newMistral(ProviderConfig{APIKey: "mk", Model: "mistral-large-latest", BaseURL: srv.URL + "/v1"})

	got, err := p.Generate(context.Background(), Request{System: "s", User: "u"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello from OpenAI" {
		t.Errorf("Generate = %q", got)
	}
	if c.body["model"] != "mistral-large-latest" {
		t.Errorf("model = %v", c.body["model"])
	}
	if p.Name() != "mistral" {
		t.Errorf("Name = %q", p.Name())
	}
	var _ Provider = p
	if _, ok := any(p).(ImageGenerator); ok {
		t.Error("mistral must not advertise image generation")
	}
}

func TestMistralModerator(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK, `{"results":[{"categories":{"violence_and_threats":true,"pii":false}}]}`)
	m := newMistralModerator("mk", srv.URL+"/v1")

	res, err := m.CheckSafety(context.Background(), "x")
	if err != nil {
		t.Fatalf("CheckSafety: %v", err)
	}
	if res.Safe || strings.Join(res.Categories, ",") != "violence and threats" {
		t.Errorf("res = %+v", res)
	}
	if c.path != "/v1/moderations" {
		t.Errorf("path = %q", c.path)
	}
	if c.headers.Get("Authorization") != "Bearer mk" {
		t.Errorf("Authorization = %q", c.headers.Get("Authorization"))
	}
}

// =====================================================================
// Claude
// =====================================================================

func TestClaudeGenerate_Success(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK, `{"content":[{"type":"text","text":"Hello from Claude"}]}`)
	p := newClaude(ProviderConfig{APIKey: "ck", Model: "claude-sonnet-4-5", BaseURL: srv.URL})

	temp := 0.8
	got, err := p.Generate(context.Background(), Request{System: "sys", User: "usr", Temperature: &temp, JSON: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello from Claude" {
		t.Errorf("Generate = %q", got)
	}
	if c.path != "/v1/messages" {
		t.Errorf("path = %q", c.path)
	}
	if c.headers.Get("x-api-key") != "ck" || c.headers.Get("anthropic-version") != "2023-06-01" {
		t.Errorf("headers = %v", c.headers)
	}
	if c.body["temperature"] != 0.8 {
		t.Errorf("temperature = %v", c.body["temperature"])
	}
	if sys, _ := c.body["system"].(string); !strings.HasSuffix(sys, claudeJSONInstruction) {
		t.Errorf("system = %q, want JSON instruction suffix", sys)
	}
}

func TestClaudeGenerate_HTTPError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	p := newClaude(ProviderConfig{APIKey: "ck", Model: "m", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), Request{User: "u"})
	pe := requireProviderError(t, err, http.StatusTooManyRequests)
	if pe.Message != "slow down" {
		t.Errorf("Message = %q", pe.Message)
	}
	if !pe.Transient() {
		t.Error("429 should be transient")
	}
}

func TestClaudeGenerate_NoTextContent(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, `{"content":[{"type":"tool_use"}]}`)
	p := newClaude(ProviderConfig{APIKey: "ck", Model: "m", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), Request{User: "u"})
	requireProviderError(t, err, 0)
}

func TestClaudeGenerate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newClaude(ProviderConfig{APIKey: "ck", Model: "m", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{User: "u"})
	requireProviderError(t, err, 0)
}

// =====================================================================
// Gemini
// =====================================================================

func TestGeminiGenerate(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello from Gemini"}]}}]}`)

	p, err := newGemini(context.Background(), ProviderConfig{APIKey: "gk", Model: "gemini-2.5-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("newGemini: %v", err)
	}

	got, err := p.Generate(context.Background(), Request{System: "sys", User: "usr", JSON: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello from Gemini" {
		t.Errorf("Generate = %q", got)
	}
	if !strings.HasSuffix(c.path, "/models/gemini-2.5-flash:generateContent") {
		t.Errorf("path = %q", c.path)
	}
}

func TestGeminiGenerateImage(t *testing.T) {
	srv, c := newRecordingServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"here"},{"inlineData":{"mimeType":"image/jpeg","data":"aGVsbG8="}}]}}]}`)

	p, err := newGemini(context.Background(), ProviderConfig{APIKey: "gk", Model: "gemini-2.5-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("newGemini: %v", err)
	}

	img, err := p.GenerateImage(context.Background(), ImageRequest{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(img.Data) != "hello" || img.ContentType != "image/jpeg" {
		t.Errorf("img = %+v", img)
	}
	if !strings.HasSuffix(c.path, "/models/gemini-2.5-flash-image:generateContent") {
		t.Errorf("path = %q", c.path)
	}
}

func TestGeminiGenerate_HTTPError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)

	p, err := newGemini(context.Background(), ProviderConfig{APIKey: "gk", Model: "m", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("newGemini: %v", err)
	}
	_, err = p.Generate(context.Background(), Request{User: "u"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
}
