// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// openAIProvider implements Provider and ImageGenerator on top of the
// official SDK. It also serves OpenAI-compatible APIs such as Mistral.
type openAIProvider struct {
	name   string
	config ProviderConfig
	client openai.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	return newOpenAICompatible("openai", cfg)
}

func newOpenAICompatible(name string, cfg ProviderConfig) *openAIProvider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(120*time.Second),
		option.WithMaxRetries(0),
	)
	return &openAIProvider{name: name, config: cfg, client: client}
}

func (p *openAIProvider) Name() string { return p.name }

// Generate sends a chat completion request and returns the assistant's
// response text.
func (p *openAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapSDKError(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Message: "no choices returned"}
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage calls the images endpoint. DALL-E returns a hosted URL;
// models answering with base64 data are decoded into Image.Data.
func (p *openAIProvider) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	params := openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(p.config.ImageModel),
		N:      openai.Int(1),
	}
	if req.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(req.Size)
	}
	if req.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(req.Quality)
	}
	if req.Style != "" {
		params.Style = openai.ImageGenerateParamsStyle(req.Style)
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapSDKError(p.name, err)
	}
	if len(resp.Data) == 0 {
		return nil, &ProviderError{Provider: p.name, Message: "no image returned"}
	}

	d := resp.Data[0]
	img := &Image{URL: d.URL, RevisedPrompt: d.RevisedPrompt}
	if img.URL == "" && d.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("openai image decode base64: %w", err)
		}
		img.Data = data
		img.ContentType = "image/png"
	}
	if img.URL == "" && len(img.Data) == 0 {
		return nil, &ProviderError{Provider: p.name, Message: "image response carried neither URL nor data"}
	}
	return img, nil
}
