package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Backend == "" {
		// A discovered or configured Postgres URL selects the postgres
		// backend; qdrant is only ever explicit.
		if cfg.Store.PostgresURL != "" {
			cfg.Store.Backend = "postgres"
		} else {
			cfg.Store.Backend = "sqlite"
		}
	}
	if cfg.Store.DatabasePath == "" {
		cfg.Store.DatabasePath = "/usr/local/var/quotable/data/quotes.db"
	}
	if cfg.Store.Qdrant.Addr == "" {
		cfg.Store.Qdrant.Addr = "localhost:6334"
	}
	if cfg.Store.Qdrant.Collection == "" {
		cfg.Store.Qdrant.Collection = "quotes"
	}
	if cfg.Embedding.Provider == "" {
		if cfg.Embedding.BaseURL != "" {
			cfg.Embedding.Provider = "openai"
		} else {
			cfg.Embedding.Provider = "mock"
		}
	}
	if cfg.Embedding.PathPrefix == "" {
		cfg.Embedding.PathPrefix = "/openai/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 3
	}
	if cfg.Embedding.RetryDelayMs == 0 {
		cfg.Embedding.RetryDelayMs = 1000
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 24
	}
	if cfg.Search.MaxK == 0 {
		cfg.Search.MaxK = 100
	}
	if cfg.Corpus.Workers == 0 {
		cfg.Corpus.Workers = 4
	}
}
