package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"askbase/internal/models"
	"askbase/pkg/config"

	"go.uber.org/zap"
)

// Factory builds Generators from workspace configuration. Clients are cached
// per provider/model/credential so the GigaChat OAuth handshake is not repeated
// on every request; rotating a credential yields a new cache key.
type Factory struct {
	gigaChat config.GigaChatConfig
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]Generator
}

func NewFactory(gigaChat config.GigaChatConfig, logger *zap.Logger) *Factory {
	return &Factory{
		gigaChat: gigaChat,
		logger:   logger,
		cache:    make(map[string]Generator),
	}
}

func (f *Factory) GeneratorFor(ctx context.Context, ws *models.Workspace) (Generator, error) {
	if ws.APICredential == "" {
		return nil, ErrNoCredential
	}

	key := cacheKey(ws)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen, ok := f.cache[key]; ok {
		return gen, nil
	}

	var (
		gen Generator
		err error
	)
	switch ws.Provider {
	case models.ProviderOpenAI:
		gen = NewOpenAIGenerator(ws.APICredential, ws.Model, f.logger)
	case models.ProviderGigaChat:
		gen, err = NewGigaChatGenerator(ctx, ws.APICredential, ws.Model, f.gigaChat.Scope, f.gigaChat.InsecureSkipVerify, f.logger)
	default:
		return nil, fmt.Errorf("unsupported provider %q", ws.Provider)
	}
	if err != nil {
		return nil, err
	}

	f.cache[key] = gen
	return gen, nil
}

// Close releases cached clients that hold network resources.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, gen := range f.cache {
		if c, ok := gen.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		delete(f.cache, key)
	}
}

func cacheKey(ws *models.Workspace) string {
	sum := sha256.Sum256([]byte(ws.APICredential))
	return fmt.Sprintf("%s/%s/%s", ws.Provider, ws.Model, hex.EncodeToString(sum[:8]))
}
