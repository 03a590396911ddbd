package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"credilink_backend/internals/helpers/apperr"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	maxRetries     = 2
)

// Client is the generative-AI boundary used by the quiz author. Each part
// becomes one content part of the request; video-based generation sends the
// prompt and the video reference as separate parts. The output is always
// treated as untrusted input by the caller.
type Client interface {
	GenerateContent(ctx context.Context, parts ...string) (string, error)
}

type geminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(apiKey string) Client {
	return &geminiClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   defaultModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

/* =========================================================
   Wire types (Generative Language API generateContent)
========================================================= */

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *geminiClient) GenerateContent(ctx context.Context, parts ...string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", apperr.Unavailable("quiz generation is not configured (missing API key)", nil)
	}

	wireParts := make([]part, 0, len(parts))
	for _, p := range parts {
		wireParts = append(wireParts, part{Text: p})
	}
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: wireParts}},
	})
	if err != nil {
		return "", apperr.Internal(err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", apperr.Unavailable("quiz generation cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		text, retryable, err := c.doRequest(ctx, url, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", apperr.Unavailable("generative service unreachable", lastErr)
}

func (c *geminiClient) doRequest(ctx context.Context, url string, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, apperr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, apperr.Unavailable("generative service request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", true, apperr.Unavailable("generative service response unreadable", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, apperr.Newf(apperr.KindUnavailable, "generative service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, apperr.Newf(apperr.KindGenerationFailed, "generative service returned %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, apperr.Wrap(apperr.KindGenerationFailed, "generative service returned malformed JSON", err)
	}
	if parsed.Error != nil {
		return "", false, apperr.Newf(apperr.KindGenerationFailed, "generative service error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", false, apperr.GenerationFailed("generative service returned no candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), false, nil
}
