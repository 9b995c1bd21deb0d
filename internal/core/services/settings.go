package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyReaderBackend     = "reader.backend"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedRateLimit    = "embedding.rate_limit"
	keyStoreBackend      = "store.backend"
	keyStoreDataDir      = "store.data_dir"
	keySearchDefaultTopK = "search.default_top_k"
	keyIngestConcurrency = "ingest.concurrency"
	keyIngestTimeout     = "ingest.batch_timeout"
	keyServerAddr        = "server.addr"
)

// Environment overrides applied on top of the config file.
//
//nolint:gosec // G101: environment variable names, not credentials.
const (
	EnvDataDir         = "SERCHA_PDF_DATA_DIR"
	EnvEmbeddingAPIKey = "SERCHA_PDF_EMBEDDING_API_KEY"
)

var settingKeys = []string{
	keyChunkOverlap,
	keyChunkSize,
	keyEmbedAPIKey,
	keyEmbedBaseURL,
	keyEmbedDimensions,
	keyEmbedModel,
	keyEmbedProvider,
	keyEmbedRateLimit,
	keyIngestTimeout,
	keyIngestConcurrency,
	keyReaderBackend,
	keySearchDefaultTopK,
	keyServerAddr,
	keyStoreBackend,
	keyStoreDataDir,
}

// Reader backends.
const (
	ReaderNative    = "native"
	ReaderPdftotext = "pdftotext"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service.
// The validator is optional; without it ValidateEmbeddingConfig is a no-op.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
// Unset keys take their defaults and environment overrides win over the file.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyIngestTimeout, d.Ingest.BatchTimeout)
	if err != nil {
		return nil, err
	}

	provider := s.getProvider(d.Embedding.Provider)
	model := s.configStore.GetString(keyEmbedModel)
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Reader: domain.ReaderSettings{
			Backend: s.getString(keyReaderBackend, d.Reader.Backend),
		},
		Chunking: domain.ChunkConfig{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   provider,
			Model:      model,
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit),
		},
		Store: domain.StoreSettings{
			Backend: s.getStoreBackend(d.Store.Backend),
			DataDir: s.configStore.GetString(keyStoreDataDir),
		},
		Search: domain.SearchSettings{
			DefaultTopK: s.getInt(keySearchDefaultTopK, d.Search.DefaultTopK),
		},
		Ingest: domain.IngestSettings{
			Concurrency:  s.getInt(keyIngestConcurrency, d.Ingest.Concurrency),
			BatchTimeout: timeout,
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
	}

	// Hash vectors have no fixed model size, so the default applies only there.
	if settings.Embedding.Dimensions == 0 && provider == domain.EmbeddingProviderHash {
		settings.Embedding.Dimensions = d.Embedding.Dimensions
	}

	if v := os.Getenv(EnvDataDir); v != "" {
		settings.Store.DataDir = v
	}
	if v := os.Getenv(EnvEmbeddingAPIKey); v != "" {
		settings.Embedding.APIKey = v
	}

	return settings, nil
}

// Save persists application settings. An empty API key leaves the stored key
// untouched so keys supplied through the environment are never written out.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyReaderBackend:     settings.Reader.Backend,
		keyChunkSize:         settings.Chunking.Size,
		keyChunkOverlap:      settings.Chunking.Overlap,
		keyEmbedProvider:     settings.Embedding.Provider.String(),
		keyEmbedModel:        settings.Embedding.Model,
		keyEmbedBaseURL:      settings.Embedding.BaseURL,
		keyEmbedDimensions:   settings.Embedding.Dimensions,
		keyEmbedRateLimit:    settings.Embedding.RateLimit,
		keyStoreBackend:      settings.Store.Backend.String(),
		keyStoreDataDir:      settings.Store.DataDir,
		keySearchDefaultTopK: settings.Search.DefaultTopK,
		keyIngestConcurrency: settings.Ingest.Concurrency,
		keyIngestTimeout:     settings.Ingest.BatchTimeout.String(),
		keyServerAddr:        settings.Server.Addr,
	}
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != os.Getenv(EnvEmbeddingAPIKey) {
		values[keyEmbedAPIKey] = settings.Embedding.APIKey
	}

	if err := s.configStore.SetAll(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set parses value for key and stores it. Cross-field rules such as
// overlap < size are left to Validate so keys can be changed in any order.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var stored any
	switch key {
	case keyChunkSize, keySearchDefaultTopK, keyIngestConcurrency:
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		stored = n
	case keyChunkOverlap, keyEmbedDimensions:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = n
	case keyEmbedRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = f
	case keyIngestTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration such as 90s, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = d.String()
	case keyEmbedProvider:
		if !domain.EmbeddingProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyReaderBackend:
		if value != ReaderNative && value != ReaderPdftotext {
			return fmt.Errorf("%w: reader backend must be %s or %s, got %q",
				domain.ErrInvalidInput, ReaderNative, ReaderPdftotext, value)
		}
		stored = value
	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyStoreDataDir, keyServerAddr:
		stored = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	updates := map[string]any{key: stored}
	// A new provider starts from its own default model and vector size.
	if key == keyEmbedProvider {
		updates[keyEmbedModel] = ""
		updates[keyEmbedDimensions] = 0
	}
	if err := s.configStore.SetAll(updates); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if b := settings.Reader.Backend; b != ReaderNative && b != ReaderPdftotext {
		return fmt.Errorf("%w: unknown reader backend %q", domain.ErrInvalidInput, b)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig builds the configured embedder and pings it.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	return domain.EmbeddingProvider(val)
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(keyStoreBackend)
	if val == "" {
		return defaultVal
	}
	return domain.StoreBackend(val)
}

func parsePositive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, key, value)
	}
	return n, nil
}
