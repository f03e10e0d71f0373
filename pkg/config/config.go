package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Chat     ChatConfig
	OpenAI   OpenAIConfig
	GigaChat GigaChatConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
}

// ChatConfig tunes the conversation engine. Workspace settings (confidence
// threshold, chip count, persona) override these where applicable.
type ChatConfig struct {
	TopK            int
	MinSimilarity   float64
	HistoryWindow   int
	MaxMessageLen   int
	MaxTokens       int
	Temperature     float64
	RateLimitWindow time.Duration
	RateLimitMax    int
	StreamTimeout   time.Duration
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
}

type GigaChatConfig struct {
	Scope              string
	InsecureSkipVerify bool
}

func Load() (*Config, error) {
	// .env is optional; environment variables win (Docker/K8s deployments).
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "120"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	topK, _ := strconv.Atoi(getEnv("CHAT_TOP_K", "5"))
	minSimilarity, _ := strconv.ParseFloat(getEnv("CHAT_MIN_SIMILARITY", "0.3"), 64)
	historyWindow, _ := strconv.Atoi(getEnv("CHAT_HISTORY_WINDOW", "20"))
	maxMessageLen, _ := strconv.Atoi(getEnv("CHAT_MAX_MESSAGE_LEN", "4000"))
	maxTokens, _ := strconv.Atoi(getEnv("CHAT_MAX_TOKENS", "1024"))
	temperature, _ := strconv.ParseFloat(getEnv("CHAT_TEMPERATURE", "0.3"), 64)
	rateWindow, _ := strconv.Atoi(getEnv("CHAT_RATE_LIMIT_WINDOW_MINUTES", "60"))
	rateMax, _ := strconv.Atoi(getEnv("CHAT_RATE_LIMIT_MAX", "100"))
	streamTimeout, _ := strconv.Atoi(getEnv("CHAT_STREAM_TIMEOUT", "120"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "askbase"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "change-me-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
		},
		Chat: ChatConfig{
			TopK:            topK,
			MinSimilarity:   minSimilarity,
			HistoryWindow:   historyWindow,
			MaxMessageLen:   maxMessageLen,
			MaxTokens:       maxTokens,
			Temperature:     temperature,
			RateLimitWindow: time.Duration(rateWindow) * time.Minute,
			RateLimitMax:    rateMax,
			StreamTimeout:   time.Duration(streamTimeout) * time.Second,
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		GigaChat: GigaChatConfig{
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
