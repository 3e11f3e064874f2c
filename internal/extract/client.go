// internal/extract/client.go
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meal-ledger/internal/models"
)

// Client turns a free-form meal description into structured nutrient items
// by prompting the language model through the prompt proxy. The model's
// output is treated as untrusted: missing content, stray prose around the
// JSON, or a single object instead of a list are all recovered from; only a
// response with no usable structure is an error.
type Client struct {
	httpClient *http.Client
	proxyURL   string
}

const systemPrompt = `You are a nutrition assistant. Given a meal description, break it into individual food items and estimate nutrition for each.

IMPORTANT: Always respond with valid JSON, a list in this exact format:
[
  {
    "name": "food item name",
    "quantity": "portion, e.g. 1個 or 2 slices",
    "weight": "estimated weight, e.g. 100g",
    "calories": "e.g. 120kcal",
    "protein": "e.g. 10g",
    "fat": "e.g. 5g",
    "carbohydrate": "e.g. 20g"
  }
]

Every calories/protein/fat/carbohydrate value must be a string with its unit suffix (kcal or g).`

// NewClient builds a client that posts prompts to proxyURL, the same
// endpoint the single-page app uses.
func NewClient(proxyURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		proxyURL: proxyURL,
	}
}

// ExtractItems runs one extraction. The returned items are raw model
// output: unvalidated magnitudes, to be normalized by the nutrition
// package.
func (c *Client) ExtractItems(ctx context.Context, text string) ([]models.NutrientItem, error) {
	prompt := fmt.Sprintf("%s\n\nMeal description: %q", systemPrompt, text)

	content, err := c.callProxy(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to get AI completion: %w", err)
	}

	items, err := parseItems(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}
	return items, nil
}

func (c *Client) callProxy(ctx context.Context, prompt string) (string, error) {
	requestData := map[string]interface{}{
		"prompt": prompt,
	}
	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content in completion")
	}

	return completion.Choices[0].Message.Content, nil
}

// parseItems digs the item list out of the model's text. Models wrap JSON
// in prose and code fences; a bare object is treated as a one-item list.
func parseItems(content string) ([]models.NutrientItem, error) {
	jsonStr, ok := extractJSON(content)
	if !ok {
		return nil, fmt.Errorf("no JSON found in model output")
	}

	if strings.HasPrefix(jsonStr, "[") {
		var items []models.NutrientItem
		if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item list: %w", err)
		}
		return items, nil
	}

	var item models.NutrientItem
	if err := json.Unmarshal([]byte(jsonStr), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return []models.NutrientItem{item}, nil
}

// extractJSON slices the first array, or failing that the first object,
// out of surrounding text.
func extractJSON(content string) (string, bool) {
	if start := strings.Index(content, "["); start != -1 {
		if end := strings.LastIndex(content, "]"); end > start {
			return content[start : end+1], true
		}
	}
	if start := strings.Index(content, "{"); start != -1 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1], true
		}
	}
	return "", false
}
