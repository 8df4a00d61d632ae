package cmd

import (
	"fmt"

	"faceauth/internal/biometric"
	"faceauth/internal/config"
	"faceauth/internal/embedding"
	"faceauth/internal/registry"
	"faceauth/internal/registry/postgres"
)

// newExtractor builds the configured embedding backend wrapped in a
// bounded worker pool.
func newExtractor(cfg *config.Config) embedding.Extractor {
	var backend embedding.Extractor
	if cfg.Embedding.URL != "" {
		backend = embedding.NewRemoteExtractor(cfg.Embedding.URL, cfg.Embedding.Dim)
		fmt.Printf("Using embedding server at %s (dim %d)\n", cfg.Embedding.URL, cfg.Embedding.Dim)
	} else {
		backend = embedding.NewPixelExtractor()
		fmt.Println("WARNING: EMBEDDING_URL not set, using the pixel fallback backend (NOT secure, development only)")
	}
	return embedding.NewPool(backend, cfg.Embedding.Workers)
}

// newStore builds the configured face registry. Returns the store and
// a cleanup function to run on shutdown.
func newStore(cfg *config.Config) (registry.Store, func(), error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		fmt.Println("Using PostgreSQL face registry")
		return postgres.NewFaceStore(pool), func() { pool.Close() }, nil
	}

	fmt.Println("WARNING: DATABASE_URL not set, enrollments are kept in memory and lost on restart")
	return registry.NewMemoryStore(), func() {}, nil
}

// newService wires the biometric service from the environment.
func newService(cfg *config.Config) (*biometric.Service, func(), error) {
	store, cleanup, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return biometric.NewService(newExtractor(cfg), store, cfg.Face.MatchThreshold), cleanup, nil
}
