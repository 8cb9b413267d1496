package gateway

import (
	"context"
	"fmt"
	"strings"

	"smartbasket/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// VisionAnalyzer produces text from an instruction plus an inline image.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, instructions string, image []byte, mimeType string) (string, error)
}

// GeminiClient serves both interfaces with separate text and vision
// models behind one API client.
type GeminiClient struct {
	client      *genai.Client
	textModel   *genai.GenerativeModel
	visionModel *genai.GenerativeModel
}

// NewGeminiClient creates a Gemini-backed text generator and vision
// analyzer from the given configuration.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		textModel:   client.GenerativeModel(cfg.TextModel),
		visionModel: client.GenerativeModel(cfg.VisionModel),
	}, nil
}

// GenerateContent sends a prompt to the text model and returns the
// generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.textModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return textFromResponse(resp)
}

// AnalyzeImage sends an instruction plus inline image data to the
// vision model and returns the generated text.
func (c *GeminiClient) AnalyzeImage(ctx context.Context, instructions string, image []byte, mimeType string) (string, error) {
	resp, err := c.visionModel.GenerateContent(ctx,
		genai.Text(instructions),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return textFromResponse(resp)
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: generated content is not text", ErrInvalidResponse)
	}

	return sb.String(), nil
}
