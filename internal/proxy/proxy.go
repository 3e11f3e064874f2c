// internal/proxy/proxy.go
package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"meal-ledger/internal/logger"
)

// Proxy forwards a client prompt to the language-model API with the
// server-held credential, so the key never reaches the browser. The
// upstream status and body come back verbatim; the proxy does not retry.
type Proxy struct {
	httpClient  *http.Client
	upstreamURL string
	apiKey      string
	model       string
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func New(upstreamURL, apiKey, model string) *Proxy {
	return &Proxy{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		upstreamURL: upstreamURL,
		apiKey:      apiKey,
		model:       model,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	if p.apiKey == "" {
		logger.Error("upstream API key not configured")
		http.Error(w, "server credential not configured", http.StatusInternalServerError)
		return
	}

	status, body, contentType, err := p.forward(req.Prompt)
	if err != nil {
		logger.Error("upstream request failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Error("failed to write proxy response", zap.Error(err))
	}
}

// forward performs one chat-completion call and hands back the upstream
// response untouched.
func (p *Proxy) forward(prompt string) (int, []byte, string, error) {
	completionRequest := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens":  2000,
		"temperature": 0.1,
	}

	jsonData, err := json.Marshal(completionRequest)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.upstreamURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, nil, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to read upstream body: %w", err)
	}

	return resp.StatusCode, body, resp.Header.Get("Content-Type"), nil
}
