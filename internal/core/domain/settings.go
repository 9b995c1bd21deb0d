package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// ChunkConfig controls the sliding window used by the chunker.
// Both values are measured in characters (runes).
type ChunkConfig struct {
	// Size is the window length.
	Size int

	// Overlap is the number of characters repeated between consecutive windows.
	Overlap int
}

// Validate checks 0 ≤ Overlap < Size and Size > 0.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunkConfig, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrInvalidChunkConfig, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			ErrInvalidChunkConfig, c.Overlap, c.Size)
	}
	return nil
}

// Step is the distance between consecutive window starts.
func (c ChunkConfig) Step() int {
	return c.Size - c.Overlap
}

// EmbeddingProvider identifies the backend that produces vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHash is the offline feature-hashing embedder.
	EmbeddingProviderHash EmbeddingProvider = "hash"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI (or compatible) API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderGemini is Google's Gemini embedding API.
	EmbeddingProviderGemini EmbeddingProvider = "gemini"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderHash, EmbeddingProviderOllama, EmbeddingProviderOpenAI, EmbeddingProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI || p == EmbeddingProviderGemini
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHash:
		return "Hash (offline, deterministic)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	case EmbeddingProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite persists records in a SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendChromem persists records with chromem-go.
	StoreBackendChromem StoreBackend = "chromem"

	// StoreBackendMemory keeps records in process memory only.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendChromem, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI and Gemini).
	APIKey string

	// Dimensions overrides the vector size. Zero uses the model default.
	Dimensions int

	// RateLimit caps requests per second to remote providers. Zero disables it.
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// DataDir is the directory holding all persisted state.
	// Wiping it resets every ingested document.
	DataDir string
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultTopK is used when a query omits top_k.
	DefaultTopK int
}

// IngestSettings holds batch ingestion configuration.
type IngestSettings struct {
	// Concurrency is the number of documents processed at once.
	Concurrency int

	// BatchTimeout bounds a whole batch. Zero means no timeout.
	BatchTimeout time.Duration
}

// ReaderSettings holds PDF extraction configuration.
type ReaderSettings struct {
	// Backend is "native" (built-in parser) or "pdftotext" (poppler).
	Backend string
}

// ServerSettings holds the HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080".
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Reader    ReaderSettings
	Chunking  ChunkConfig
	Embedding EmbeddingSettings
	Store     StoreSettings
	Search    SearchSettings
	Ingest    IngestSettings
	Server    ServerSettings
}

// Validate checks the settings that must hold before any work begins.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return fmt.Errorf("%w: embedding provider %s requires an api key", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidInput, s.Store.Backend)
	}
	if err := ValidateTopK(s.Search.DefaultTopK); err != nil {
		return err
	}
	if s.Ingest.Concurrency < 1 {
		return fmt.Errorf("%w: ingest concurrency must be at least 1", ErrInvalidInput)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// The hash embedder and SQLite store work without any external service.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Reader: ReaderSettings{
			Backend: "native",
		},
		Chunking: ChunkConfig{
			Size:    1000,
			Overlap: 150,
		},
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingProviderHash,
			Model:      DefaultEmbeddingModels()[EmbeddingProviderHash],
			Dimensions: 384,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Search: SearchSettings{
			DefaultTopK: DefaultTopK,
		},
		Ingest: IngestSettings{
			Concurrency: 1,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
		},
	}
}

// AllEmbeddingProviders returns every supported embedding provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderHash,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
		EmbeddingProviderGemini,
	}
}

// AllStoreBackends returns every supported store backend.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendSQLite,
		StoreBackendChromem,
		StoreBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderHash:   "fnv-hash",
		EmbeddingProviderOllama: "nomic-embed-text",
		EmbeddingProviderOpenAI: "text-embedding-3-small",
		EmbeddingProviderGemini: "text-embedding-004",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
