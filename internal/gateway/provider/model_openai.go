package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tradepersona/internal/logger"
)

// OpenAIChatClient：兼容 OpenAI / Gemini / DeepSeek 的聊天补全接口（/chat/completions）。
type OpenAIChatClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	Temperature  float64
	ExtraHeaders map[string]string

	http *resty.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIChatClient 创建带重试的 resty 客户端：429/5xx 重试，指数退避上限 8s。
func NewOpenAIChatClient(baseURL, apiKey, model string, timeout time.Duration, maxRetries int, headers map[string]string) *OpenAIChatClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	c := &OpenAIChatClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		Timeout:      timeout,
		MaxRetries:   maxRetries,
		Temperature:  0.2,
		ExtraHeaders: headers,
	}
	c.http = resty.New().
		SetTimeout(timeout).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(800 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && retryableStatus(r.StatusCode())
		})
	return c
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// endpoint 规范化 BaseURL，避免用户把完整的 /chat/completions 也写进配置导致重复路径。
func (c *OpenAIChatClient) endpoint() string {
	url := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

// maskedHeaders 返回用于日志的请求头，授权类字段只保留后 4 位。
func (c *OpenAIChatClient) maskedHeaders() map[string]string {
	out := map[string]string{"Content-Type": "application/json"}
	if c.APIKey != "" {
		out["Authorization"] = "Bearer " + maskSecret(c.APIKey)
	}
	for k, v := range c.ExtraHeaders {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "key") || strings.Contains(lk, "token") || strings.Contains(lk, "auth") {
			v = maskSecret(v)
		}
		out[k] = v
	}
	return out
}

func maskSecret(s string) string {
	if len(s) > 4 {
		return "****" + s[len(s)-4:]
	}
	return "****"
}

// Complete 发送一次 system+user 对话，返回第一条 choice 的内容。
func (c *OpenAIChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.http == nil {
		return "", fmt.Errorf("chat client %s was not built with NewOpenAIChatClient", c.Model)
	}
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})
	body := chatRequest{Model: c.Model, Messages: messages, Temperature: c.Temperature, MaxTokens: maxTokens}

	url := c.endpoint()
	logger.Debugf("[AI] 请求: POST %s, headers=%v, model=%s", url, c.maskedHeaders(), c.Model)

	var out chatResponse
	var apiErr chatError
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr)
	if c.APIKey != "" {
		req.SetAuthToken(c.APIKey)
	}
	for k, v := range c.ExtraHeaders {
		req.SetHeader(k, v)
	}
	resp, err := req.Post(url)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		msg := strings.TrimSpace(apiErr.Error.Message)
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("status=%d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %w", ErrEmptyReply)
	}
	return out.Choices[0].Message.Content, nil
}

// OpenAIModelProvider 把 OpenAIChatClient 适配为 ModelProvider。
type OpenAIModelProvider struct {
	id     string
	client *OpenAIChatClient
}

func NewOpenAIModelProvider(id string, client *OpenAIChatClient) *OpenAIModelProvider {
	return &OpenAIModelProvider{id: id, client: client}
}

func (p *OpenAIModelProvider) ID() string { return p.id }

func (p *OpenAIModelProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	return p.client.Complete(ctx, payload.System, payload.User, payload.MaxTokens)
}
