package liveevents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-3-flash-preview"
)

// geminiClient wraps the generateContent API with optional web-search
// grounding and optional strict JSON output schemas.
type geminiClient struct {
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
}

func newGeminiClient(apiKey string, httpc *http.Client) *geminiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &geminiClient{
		apiKey:  strings.TrimSpace(apiKey),
		httpc:   httpc,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

func (c *geminiClient) isConfigured() bool {
	return c.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	Tools            []geminiTool            `json:"tools,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

// geminiSchema is the typed output schema accepted by generationConfig.
type geminiSchema struct {
	Type       string                   `json:"type"`
	Properties map[string]*geminiSchema `json:"properties,omitempty"`
	Items      *geminiSchema            `json:"items,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// webSource is one cited grounding source from a grounded response.
type webSource struct {
	URI   string
	Title string
}

// generateResult carries the generated text plus any web citations.
type generateResult struct {
	text    string
	sources []webSource
}

// generate issues one generateContent call. grounded enables the web-search
// tool; schema, when non-nil, constrains the output to strict JSON. The two
// are not reliably combinable in one call, which is why event discovery is a
// two-call sequence at the service level.
func (c *geminiClient) generate(ctx context.Context, prompt string, grounded bool, schema *geminiSchema) (*generateResult, error) {
	if !c.isConfigured() {
		return nil, errors.New("gemini api key not configured")
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if grounded {
		reqBody.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}
	if schema != nil {
		reqBody.GenerationConfig = &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, geminiModel, c.apiKey)

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("create gemini request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[gemini] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("gemini request failed: status %d", resp.StatusCode)
			log.Printf("[gemini] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
		}

		var geminiResp geminiResponse
		err = json.NewDecoder(resp.Body).Decode(&geminiResp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode gemini response: %w", err)
		}

		if geminiResp.Error != nil {
			return nil, fmt.Errorf("gemini API error: %s", geminiResp.Error.Message)
		}
		if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
			return nil, errors.New("gemini returned empty response")
		}

		candidate := geminiResp.Candidates[0]
		result := &generateResult{text: candidate.Content.Parts[0].Text}
		if candidate.GroundingMetadata != nil {
			for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
				if chunk.Web == nil {
					continue
				}
				result.sources = append(result.sources, webSource{URI: chunk.Web.URI, Title: chunk.Web.Title})
			}
		}
		return result, nil
	}

	return nil, fmt.Errorf("gemini request failed after 3 attempts: %w", lastErr)
}
