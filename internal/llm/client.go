// client.go - AI analysis client
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"upgrade-analyzer/internal/config"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/pkg/logger"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// ChatCompletionRequest is the chat completion request body
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// Message is one chat message
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatCompletionResponse is the chat completion response body
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is the token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AnalyzerClient wraps calls to the external code-analysis API
type AnalyzerClient interface {
	Analyze(ctx context.Context, sourceText string, actx model.AnalysisContext) (*model.AnalysisResult, error)
	Available() bool
	Close() error
}

// OpenAIClient is the chat-completions implementation of AnalyzerClient
type OpenAIClient struct {
	apiConfig  config.ConfigAPI
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// NewAnalyzerClient creates a client from the API configuration
func NewAnalyzerClient(apiConfig config.ConfigAPI, logger logger.Logger) (AnalyzerClient, error) {
	if apiConfig.BaseURL == "" {
		return nil, fmt.Errorf("base_url cannot be empty")
	}
	if apiConfig.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if apiConfig.MaxRetries <= 0 {
		apiConfig.MaxRetries = config.DefaultConfigAPI.MaxRetries
	}
	if apiConfig.RetryBaseDelay <= 0 {
		apiConfig.RetryBaseDelay = config.DefaultConfigAPI.RetryBaseDelay
	}
	if apiConfig.RequestsPerMin <= 0 {
		apiConfig.RequestsPerMin = config.DefaultConfigAPI.RequestsPerMin
	}

	timeout := time.Duration(apiConfig.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultConfigAPI.TimeoutSeconds) * time.Second
	}

	return &OpenAIClient{
		apiConfig:  apiConfig,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(apiConfig.RequestsPerMin)), apiConfig.RequestsPerMin),
		logger:     logger,
	}, nil
}

// Available reports whether a well-formed credential is configured. Test
// mode is always available, it performs no network I/O.
func (c *OpenAIClient) Available() bool {
	if c.apiConfig.TestMode {
		return true
	}
	return config.ValidateCredential(c.apiConfig.Key)
}

// Analyze sends one source snippet for analysis. Rate-limit responses are
// retried with exponential backoff; all other HTTP failures surface
// immediately as AnalysisError. A malformed response body degrades to an
// empty-issue result with a warning so one bad file never aborts a batch.
func (c *OpenAIClient) Analyze(ctx context.Context, sourceText string, actx model.AnalysisContext) (*model.AnalysisResult, error) {
	if c.apiConfig.TestMode {
		return cannedResult(actx), nil
	}
	if !c.Available() {
		return nil, errs.ErrUnavailable
	}

	content, err := c.completeWithRetry(ctx, sourceText, actx)
	if err != nil {
		return nil, err
	}

	return parseAnalysisContent(content, actx, c.logger), nil
}

// completeWithRetry performs the chat completion call with the rate-limit
// retry policy: up to MaxRetries attempts, delay taken from the server hint
// when present, else baseDelay * 2^(attempt-1).
func (c *OpenAIClient) completeWithRetry(ctx context.Context, sourceText string, actx model.AnalysisContext) (string, error) {
	baseDelay := time.Duration(c.apiConfig.RetryBaseDelay) * time.Second
	maxRetries := c.apiConfig.MaxRetries

	var lastRateLimit *errs.RateLimitError
	for attempt := 1; attempt <= maxRetries; attempt++ {
		startTime := time.Now()
		content, err := c.doComplete(ctx, sourceText, actx)
		if err == nil {
			c.logger.Debug("analysis request for %s succeeded on attempt %d, duration: %v",
				actx.FilePath, attempt, time.Since(startTime))
			return content, nil
		}

		rateLimitErr, ok := err.(*errs.RateLimitError)
		if !ok {
			// Auth, malformed request and server errors are not retried
			return "", err
		}

		lastRateLimit = rateLimitErr
		if attempt == maxRetries {
			break
		}

		delay := rateLimitErr.RetryAfter
		if delay <= 0 {
			delay = baseDelay * (1 << (attempt - 1))
		}
		c.logger.Warn("rate limited on attempt %d for %s, retrying in %v", attempt, actx.FilePath, delay)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", &errs.AnalysisError{
		FilePath:   actx.FilePath,
		StatusCode: http.StatusTooManyRequests,
		Message:    fmt.Sprintf("rate limited after %d attempts", maxRetries),
		Err:        lastRateLimit,
	}
}

// doComplete performs a single chat completion request
func (c *OpenAIClient) doComplete(ctx context.Context, sourceText string, actx model.AnalysisContext) (string, error) {
	req := &ChatCompletionRequest{
		Model: c.apiConfig.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserMessage(sourceText, actx)},
		},
		MaxTokens:   c.apiConfig.MaxTokens,
		Temperature: c.apiConfig.Temperature,
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimSuffix(c.apiConfig.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(requestBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiConfig.Key))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &errs.AnalysisError{FilePath: actx.FilePath, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.AnalysisError{FilePath: actx.FilePath, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &errs.RateLimitError{
			RetryAfter: retryAfterHint(resp, body),
			Message:    string(body),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &errs.AnalysisError{
			FilePath:   actx.FilePath,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var response ChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &errs.AnalysisError{FilePath: actx.FilePath, Message: "failed to decode response", Err: err}
	}
	if len(response.Choices) == 0 {
		return "", &errs.AnalysisError{FilePath: actx.FilePath, Message: "no choices in response"}
	}

	c.logger.Debug("analysis request completed - ID: %s, Tokens: %d",
		response.ID, response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}

var retryHintRe = regexp.MustCompile(`try again in (\d+(?:\.\d+)?)\s*s`)

// retryAfterHint extracts the server-provided retry delay from the
// Retry-After header or the "try again in Ns" phrase in the error body
func retryAfterHint(resp *http.Response, body []byte) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	if m := retryHintRe.FindSubmatch(body); m != nil {
		if seconds, err := strconv.ParseFloat(string(m[1]), 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return 0
}

// parseAnalysisContent decodes the strict response contract, stripping one
// fenced json block when present. Any other deviation degrades to an
// empty-issue result with a recorded warning.
func parseAnalysisContent(content string, actx model.AnalysisContext, log logger.Logger) *model.AnalysisResult {
	result := &model.AnalysisResult{
		FilePath: actx.FilePath,
		Module:   actx.Module,
		Issues:   []model.Issue{},
	}

	payload := stripFence(content)
	if !gjson.Valid(payload) {
		parseErr := &errs.ParseError{FilePath: actx.FilePath, Err: fmt.Errorf("response is not valid JSON")}
		log.Warn("%v", parseErr)
		result.Warnings = append(result.Warnings, parseErr.Error())
		return result
	}

	parsed := gjson.Parse(payload)
	for _, item := range parsed.Get("issues").Array() {
		result.Issues = append(result.Issues, model.Issue{
			Type:          model.NormalizeIssueType(item.Get("type").String()),
			Description:   item.Get("description").String(),
			Priority:      model.NormalizePriority(item.Get("priority").String()),
			CurrentCode:   item.Get("current_code").String(),
			SuggestedCode: item.Get("code_example").String(),
			LineNumber:    int(item.Get("line_number").Int()),
		})
	}
	for _, warning := range parsed.Get("warnings").Array() {
		result.Warnings = append(result.Warnings, warning.String())
	}
	result.Summary = parsed.Get("summary").String()

	return result
}

// stripFence unwraps a single fenced code block around the payload
func stripFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// cannedResult is the fixed test-mode output: two issues, no network I/O
func cannedResult(actx model.AnalysisContext) *model.AnalysisResult {
	return &model.AnalysisResult{
		FilePath: actx.FilePath,
		Module:   actx.Module,
		Issues: []model.Issue{
			{
				Type:          model.IssueTypeDeprecation,
				Description:   "drupal_set_message() is removed, use the messenger service",
				Priority:      model.PriorityCritical,
				CurrentCode:   "drupal_set_message($message);",
				SuggestedCode: "\\Drupal::messenger()->addMessage($message);",
				LineNumber:    1,
			},
			{
				Type:          model.IssueTypeBestPractice,
				Description:   "inject services instead of calling the static container",
				Priority:      model.PrioritySuggestion,
				CurrentCode:   "\\Drupal::service('database')",
				SuggestedCode: "constructor-injected Connection $database",
			},
		},
		Summary: "test mode canned analysis",
	}
}

// Close closes the client
func (c *OpenAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
