package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is the text side of the model provider. Its output is untrusted
// text; JSON callers pass it through Recover before decoding.
type Client interface {
	GenerateContent(ctx context.Context, systemMessage, prompt string, tier ModelTier) (string, error)
	// GenerateJSON also asks the provider to answer in JSON mode.
	GenerateJSON(ctx context.Context, systemMessage, prompt string, tier ModelTier) (string, error)
	GetModel(tier ModelTier) string
	Close() error
}

// VisionClient adds binary input such as a scanned PDF or a photo.
type VisionClient interface {
	Client
	GenerateFromBlob(ctx context.Context, prompt, mimeType string, data []byte, tier ModelTier) (string, error)
}

// ErrNoText is returned when the provider answers without any text part.
var ErrNoText = errors.New("model returned no text")

// ErrBlocked is returned when the provider refuses the prompt or its answer.
var ErrBlocked = errors.New("model response blocked")

// NewClient opens a provider client. A positive config.Timeout bounds every
// call.
func NewClient(ctx context.Context, config *Config, apiKey string) (VisionClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Provider != "" && config.Provider != ProviderGemini {
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}

	var client VisionClient
	client, err := NewGeminiClient(ctx, config, apiKey)
	if err != nil {
		return nil, err
	}
	if config.Timeout > 0 {
		client = WithTimeout(client, config.Timeout)
	}
	return client, nil
}

// GeminiClient talks to Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &GeminiClient{client: c, config: config}, nil
}

// request is one model call. Everything the three public methods differ
// in lives here.
type request struct {
	tier   ModelTier
	system string
	json   bool
	parts  []genai.Part
	label  string
}

func (c *GeminiClient) do(ctx context.Context, req request) (string, error) {
	name := c.config.GetModel(req.tier)
	if name == "" {
		return "", fmt.Errorf("gemini: no model configured for tier %s", req.tier)
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.GetTemperature(req.tier))
	if req.system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.system))
	}
	if req.json {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, req.parts...)
	if err != nil {
		return "", fmt.Errorf("gemini %s (%s): %w", req.label, name, err)
	}
	return responseText(resp)
}

func (c *GeminiClient) GenerateContent(ctx context.Context, systemMessage, prompt string, tier ModelTier) (string, error) {
	return c.do(ctx, request{tier: tier, system: systemMessage, parts: []genai.Part{genai.Text(prompt)}, label: "text"})
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, systemMessage, prompt string, tier ModelTier) (string, error) {
	text, err := c.do(ctx, request{tier: tier, system: systemMessage, json: true, parts: []genai.Part{genai.Text(prompt)}, label: "json"})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GenerateFromBlob sends data inline ahead of the prompt.
func (c *GeminiClient) GenerateFromBlob(ctx context.Context, prompt, mimeType string, data []byte, tier ModelTier) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("gemini: empty %s payload", mimeType)
	}
	return c.do(ctx, request{
		tier:  tier,
		parts: []genai.Part{genai.Blob{MIMEType: mimeType, Data: data}, genai.Text(prompt)},
		label: mimeType,
	})
}

func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrNoText
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoText
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: safety filter", ErrBlocked)
	}
	if cand.Content == nil {
		return "", ErrNoText
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoText
	}
	return sb.String(), nil
}
