package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/appointment-parser/internal/config"
)

// Client calls the generative-language REST API. It exposes a text entry
// point for the extraction/normalization templates and a vision entry
// point for reading photographed notes.
type Client struct {
	apiKey      string
	baseURL     string
	textModel   string
	visionModel string
	httpClient  *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends the given text parts to the text model and returns the
// first candidate's concatenated text.
func (c *Client) GenerateText(ctx context.Context, parts ...string) (string, error) {
	payload := make([]part, 0, len(parts))
	for _, p := range parts {
		payload = append(payload, part{Text: p})
	}
	return c.generate(ctx, c.textModel, payload)
}

// GenerateVision sends one image plus an instruction to the vision model.
func (c *Client) GenerateVision(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	payload := []part{
		{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
		{Text: instruction},
	}
	return c.generate(ctx, c.visionModel, payload)
}

func (c *Client) generate(ctx context.Context, model string, parts []part) (string, error) {
	if c == nil {
		return "", fmt.Errorf("genai client is nil")
	}
	if c.apiKey == "" || c.baseURL == "" || model == "" {
		return "", fmt.Errorf("genai client misconfigured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("genai error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("genai returned no candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
