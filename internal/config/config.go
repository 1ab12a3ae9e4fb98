package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервера голосовых опросов.
type Config struct {
	// Настройки HTTP
	Port           string   `envconfig:"PORT" default:"8000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Настройки логирования
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Каталог вопросов
	QuestionsFile string `envconfig:"QUESTIONS_FILE" default:"questions.csv"`

	// Настройки AI оракула (классификация интентов, валидация ответов, пояснения)
	AIClientType     string        `envconfig:"AI_CLIENT_TYPE" default:"openai"` // openai или ollama
	AIBaseURL        string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel          string        `envconfig:"AI_MODEL" default:"gpt-4o"`
	AITimeout        time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`
	AIMaxAttempts    int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIBaseRetryDelay time.Duration `envconfig:"AI_BASE_RETRY_DELAY" default:"1s"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Настройки речевых сервисов (STT/TTS)
	STTModel      string        `envconfig:"STT_MODEL" default:"whisper-1"`
	TTSModel      string        `envconfig:"TTS_MODEL" default:"tts-1"`
	TTSVoice      string        `envconfig:"TTS_VOICE" default:"alloy"`
	SpeechTimeout time.Duration `envconfig:"SPEECH_TIMEOUT" default:"60s"`

	// Настройки хранилища сессий
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"30m"` // 0 отключает реапер
	SessionReapInterval time.Duration `envconfig:"SESSION_REAP_INTERVAL" default:"1m"`

	// Persistence sink для ответов: csv или postgres
	ResponsesBackend string `envconfig:"RESPONSES_BACKEND" default:"csv"`
	ResponsesFile    string `envconfig:"RESPONSES_FILE" default:"responses.csv"`

	// Настройки PostgreSQL (используются при RESPONSES_BACKEND=postgres)
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"survey_db"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int    `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.AIAPIKey, loadErr = readSecret("ai_api_key", "OPENAI_API_KEY")
	if loadErr != nil {
		return nil, loadErr
	}

	// Пароль БД нужен только для postgres-бэкенда
	if strings.EqualFold(cfg.ResponsesBackend, "postgres") {
		cfg.DBPassword, loadErr = readSecret("db_password", "DB_PASSWORD")
		if loadErr != nil {
			return nil, loadErr
		}
	}

	// Логируем загруженную конфигурацию (кроме ключей)
	log.Printf("Конфигурация загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  Allowed Origins: %v", cfg.AllowedOrigins)
	log.Printf("  Questions File: %s", cfg.QuestionsFile)
	log.Printf("  AI Client Type: %s", cfg.AIClientType)
	log.Printf("  AI Base URL: %s", cfg.AIBaseURL)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  AI Timeout: %v", cfg.AITimeout)
	log.Printf("  AI Max Attempts: %d", cfg.AIMaxAttempts)
	log.Printf("  STT Model: %s, TTS Model: %s, Voice: %s", cfg.STTModel, cfg.TTSModel, cfg.TTSVoice)
	log.Printf("  Session TTL: %v", cfg.SessionTTL)
	log.Printf("  Responses Backend: %s", cfg.ResponsesBackend)
	log.Println("  AI API Key: [ЗАГРУЖЕН]")

	return &cfg, nil
}

// readSecret читает секрет из файла в стандартном пути Docker Secrets,
// с fallback на переменную окружения для локальной разработки.
func readSecret(secretName, envFallback string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret != "" {
			return secret, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv(envFallback)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %s not found: neither file %s nor env %s is set", secretName, filePath, envFallback)
}
