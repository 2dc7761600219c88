package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"fintrack/internal/config"
)

// Backend is an opened KV together with whatever must be closed afterwards
type Backend struct {
	KV    KV
	Files *Storage // set for the file backend only
	Name  string

	close func(context.Context) error
}

// Close releases the backend connection
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Locked reports whether the file backend is encrypted and still locked
func (b *Backend) Locked() bool {
	return b.Files != nil && !b.Files.IsUnlocked()
}

// OpenBackend connects the backend selected in cfg. An encrypted file store is
// unlocked with cfg.Password when one is set; otherwise it is returned locked.
func OpenBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		files, err := New(cfg.DataDirectory)
		if err != nil {
			return nil, err
		}
		if files.IsEncrypted() && cfg.Password != "" {
			if err := files.Unlock(cfg.Password); err != nil {
				return nil, fmt.Errorf("failed to unlock %s: %w", cfg.DataDirectory, err)
			}
		}
		logger.Info().Str("dir", cfg.DataDirectory).Bool("encrypted", files.IsEncrypted()).Msg("using file storage")
		return &Backend{KV: NewFileKV(files), Files: files, Name: config.BackendFile}, nil

	case config.BackendMemory:
		logger.Warn().Msg("using in-memory storage, data is lost on exit")
		return &Backend{KV: NewMemoryKV(), Name: config.BackendMemory}, nil

	case config.BackendRedis:
		client, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("using redis storage")
		return &Backend{
			KV:    NewRedisKV(client, DefaultRedisPrefix),
			Name:  config.BackendRedis,
			close: func(context.Context) error { return client.Close() },
		}, nil

	case config.BackendMongo:
		client, coll, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("using mongo storage")
		return &Backend{
			KV:    NewMongoKV(coll),
			Name:  config.BackendMongo,
			close: client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
