package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"survey-server/internal/config"
	"survey-server/internal/models"
)

var (
	oracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_oracle_requests_total",
			Help: "Total number of requests to the AI oracle.",
		},
		[]string{"model", "status"},
	)
	oracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survey_oracle_request_duration_seconds",
			Help:    "Histogram of AI oracle request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	oracleTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survey_oracle_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(100, 100, 20), // 100, 200, ..., 2000
		},
		[]string{"model"},
	)
)

// UsageInfo содержит информацию об использовании токенов.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionParams - параметры одного запроса к оракулу.
// JSONMode включает строгий JSON-ответ (для классификации и валидации);
// пояснения к вопросам запрашиваются обычным текстом.
type CompletionParams struct {
	Temperature *float64
	JSONMode    bool
}

// Oracle - абстрактный текстовый оракул, общий для классификатора интентов,
// интерпретатора ответов и пояснителя вопросов. Реализация взаимозаменяема
// (OpenAI, Ollama) и не знает о семантике опроса.
type Oracle interface {
	Complete(ctx context.Context, sessionID string, systemPrompt string, userInput string, params CompletionParams) (string, UsageInfo, error)
}

// --- OpenAI Oracle Implementation ---

// openAIOracle реализует Oracle с использованием go-openai.
type openAIOracle struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// Complete выполняет один запрос к chat completions API.
func (c *openAIOracle) Complete(ctx context.Context, sessionID string, systemPrompt string, userInput string, params CompletionParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: системный промт пуст", models.ErrOracleUnavailable)
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	req := openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
	}
	if params.JSONMode {
		req.ResponseFormat = &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	startTime := time.Now()
	c.logger.Debug("Отправка запроса к AI",
		zap.String("model", c.model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_input_bytes", len(userInput)),
		zap.String("session_id", sessionID))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("Ошибка от AI API",
			zap.Duration("duration", duration),
			zap.String("session_id", sessionID),
			zap.Error(err))
		oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", models.ErrOracleUnavailable, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: получен пустой ответ", models.ErrOracleUnavailable)
	}

	oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	oracleRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
		oracleTotalTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.Usage.TotalTokens))
	}

	generatedText := resp.Choices[0].Message.Content
	c.logger.Debug("Ответ от AI API получен",
		zap.Duration("duration", duration),
		zap.Int("response_len", len(generatedText)),
		zap.String("session_id", sessionID))

	return generatedText, usageInfo, nil
}

// --- Вспомогательная функция для конвертации *float64 в float32 ---
func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 1.0
	}
	return float32(*f64)
}

// --- Ollama Oracle Implementation ---

// ollamaOracle реализует Oracle с использованием ollama/api.
type ollamaOracle struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// newOllamaOracle создает клиент для взаимодействия с локальным Ollama.
func newOllamaOracle(cfg *config.Config, logger *zap.Logger) (Oracle, error) {
	httpClient := &http.Client{Timeout: cfg.AITimeout}

	// api.NewClient требует URL без суффикса /v1
	ollamaBaseURL := strings.TrimSuffix(cfg.AIBaseURL, "/v1")
	ollamaBaseURL = strings.TrimSuffix(ollamaBaseURL, "/")

	parsedURL, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", ollamaBaseURL, err)
	}

	client := api.NewClient(parsedURL, httpClient)
	logger.Info("Ollama клиент создан",
		zap.String("base_url", ollamaBaseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &ollamaOracle{
		client:  client,
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		logger:  logger,
	}, nil
}

// Complete выполняет один нестриминговый chat-запрос к Ollama.
func (c *ollamaOracle) Complete(ctx context.Context, sessionID string, systemPrompt string, userInput string, params CompletionParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: системный промт пуст", models.ErrOracleUnavailable)
	}

	messages := []api.Message{
		{Role: "system", Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}

	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
		Options: map[string]interface{}{
			"temperature": params.Temperature,
		},
	}
	if params.JSONMode {
		req.Format = json.RawMessage(`"json"`)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r // Сохраняем последний (полный) ответ
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("Ошибка от Ollama API",
			zap.Duration("duration", duration),
			zap.String("session_id", sessionID),
			zap.Error(err))
		oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", models.ErrOracleUnavailable, err)
	}

	if resp.Message.Content == "" {
		oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: получен пустой ответ", models.ErrOracleUnavailable)
	}

	oracleRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	oracleRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	usageInfo.PromptTokens = resp.PromptEvalCount
	usageInfo.CompletionTokens = resp.EvalCount
	usageInfo.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	if usageInfo.TotalTokens > 0 {
		oracleTotalTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.TotalTokens))
	}

	return resp.Message.Content, usageInfo, nil
}

// --- Factory Function ---

// NewOracle создает оракула в зависимости от конфигурации и оборачивает его
// в политику повторов, чтобы движок диалога не знал о механике ретраев.
func NewOracle(cfg *config.Config, logger *zap.Logger) (Oracle, error) {
	logger = logger.Named("Oracle")

	var inner Oracle
	switch strings.ToLower(cfg.AIClientType) {
	case "openai":
		openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		openaiConfig.BaseURL = cfg.AIBaseURL
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		client := openaigo.NewClientWithConfig(openaiConfig)
		logger.Info("OpenAI клиент создан",
			zap.String("base_url", cfg.AIBaseURL),
			zap.String("model", cfg.AIModel),
			zap.Duration("timeout", cfg.AITimeout))
		inner = &openAIOracle{client: client, model: cfg.AIModel, logger: logger}
	case "ollama":
		var err error
		inner, err = newOllamaOracle(cfg, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.AIClientType)
	}

	return newRetryingOracle(inner, cfg.AIMaxAttempts, cfg.AIBaseRetryDelay, logger), nil
}
