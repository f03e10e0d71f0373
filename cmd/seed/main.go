package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"askbase/internal/dto"
	"askbase/internal/llm"
	"askbase/internal/models"
	"askbase/internal/repository"
	"askbase/internal/service"
	"askbase/pkg/config"
	"askbase/pkg/logger"
	"askbase/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedItem is a single question/answer entry in the seed data file.
type SeedItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// SeedData describes the demo workspace and its knowledge base.
type SeedData struct {
	WorkspaceName       string     `json:"workspace_name"`
	SystemPrompt        string     `json:"system_prompt"`
	ConfidenceThreshold float64    `json:"confidence_threshold"`
	MaxSuggestionChips  int        `json:"max_suggestion_chips"`
	EscalationEnabled   bool       `json:"escalation_enabled"`
	BookingURL          string     `json:"booking_url"`
	Provider            string     `json:"provider"`
	Model               string     `json:"model"`
	Items               []SeedItem `json:"items"`
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	workspaceRepo := repository.NewWorkspaceRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)

	embedder := llm.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, appLogger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, embedder, nil, service.NewDeferredRunner(cfg.Chat.StreamTimeout, appLogger), appLogger)

	appLogger.Info("Starting database seeding...")

	data, err := loadSeedData(filepath.Join("cmd", "seed", "seed_data.json"))
	if err != nil {
		appLogger.Fatal("Failed to load seed data", zap.Error(err))
	}

	now := time.Now().UTC()
	ws := &models.Workspace{
		ID:                  uuid.New(),
		Name:                data.WorkspaceName,
		SystemPrompt:        data.SystemPrompt,
		ConfidenceThreshold: data.ConfidenceThreshold,
		MaxSuggestionChips:  data.MaxSuggestionChips,
		EscalationEnabled:   data.EscalationEnabled,
		BookingURL:          data.BookingURL,
		Provider:            providerOrDefault(data.Provider),
		Model:               data.Model,
		APICredential:       getEnvCredential(providerOrDefault(data.Provider), cfg),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := workspaceRepo.Create(ctx, ws); err != nil {
		appLogger.Fatal("Failed to create workspace", zap.Error(err))
	}
	appLogger.Info("Created demo workspace",
		zap.String("id", ws.ID.String()),
		zap.String("name", ws.Name),
	)

	created := 0
	for _, item := range data.Items {
		pair, err := knowledgeService.Create(ctx, ws.ID, dto.KnowledgeItem{
			Question: item.Question,
			Answer:   item.Answer,
			Category: item.Category,
		})
		if err != nil {
			appLogger.Error("Failed to create knowledge pair",
				zap.String("question", item.Question),
				zap.Error(err),
			)
			continue
		}
		created++
		appLogger.Info("Created knowledge pair",
			zap.String("id", pair.ID.String()),
			zap.String("category", pair.Category),
		)
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.Int("pairs", created),
		zap.Int("total", len(data.Items)),
	)
}

// loadSeedData reads the seed file, falling back to a built-in demo set when
// the file is absent.
func loadSeedData(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultSeedData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	data := &SeedData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if data.WorkspaceName == "" {
		data.WorkspaceName = "Demo Workspace"
	}
	return data, nil
}

func defaultSeedData() *SeedData {
	return &SeedData{
		WorkspaceName:       "Demo Workspace",
		SystemPrompt:        "You are the assistant for a small dental clinic called Brightsmile.",
		ConfidenceThreshold: models.DefaultConfidenceThreshold,
		MaxSuggestionChips:  models.DefaultSuggestionChips,
		EscalationEnabled:   true,
		BookingURL:          "https://example.com/book",
		Provider:            string(models.ProviderOpenAI),
		Model:               "gpt-4o-mini",
		Items: []SeedItem{
			{
				Question: "What are your opening hours?",
				Answer:   "We are open Monday to Friday from 9:00 to 18:00 and Saturday from 10:00 to 14:00.",
				Category: "general",
			},
			{
				Question: "Do you accept walk-in appointments?",
				Answer:   "We see walk-ins when a slot is free, but booking ahead guarantees your appointment.",
				Category: "appointments",
			},
			{
				Question: "How much does a routine check-up cost?",
				Answer:   "A routine check-up including cleaning costs 75 EUR. Insurance usually covers most of it.",
				Category: "pricing",
			},
			{
				Question: "Do you offer teeth whitening?",
				Answer:   "Yes, we offer in-office whitening from 250 EUR. Book a consultation to check suitability.",
				Category: "services",
			},
			{
				Question: "Where is the clinic located?",
				Answer:   "We are at Hauptstrasse 12, a five minute walk from the central station.",
				Category: "general",
			},
		},
	}
}

func providerOrDefault(p string) models.Provider {
	if p == "" {
		return models.ProviderOpenAI
	}
	return models.Provider(p)
}

// getEnvCredential picks the API credential for the seeded workspace from
// the environment so secrets never live in the seed file.
func getEnvCredential(provider models.Provider, cfg *config.Config) string {
	if provider == models.ProviderGigaChat {
		return os.Getenv("GIGACHAT_API_KEY")
	}
	return cfg.OpenAI.APIKey
}
