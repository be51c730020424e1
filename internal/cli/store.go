package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/adapters/file"
	"github.com/aretw0/flowstep/pkg/adapters/memory"
	"github.com/aretw0/flowstep/pkg/adapters/redis"
	"github.com/aretw0/flowstep/pkg/persistence/middleware"
	"github.com/aretw0/flowstep/pkg/ports"
	"github.com/aretw0/flowstep/pkg/session"
)

// Store kinds accepted by --store.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Environment variables read when the matching flag is empty.
const (
	EnvRedisURL          = "FLOWSTEP_REDIS_URL"
	EnvStoreKey          = "FLOWSTEP_STORE_KEY"
	EnvStoreFallbackKeys = "FLOWSTEP_STORE_FALLBACK_KEYS"
)

// DefaultStoreDir is where the file store keeps sessions, relative to --dir.
var DefaultStoreDir = filepath.Join(".flowstep", "sessions")

// StoreOptions selects and configures a session store.
type StoreOptions struct {
	Kind     string
	Dir      string
	RedisURL string
}

// Persistence bundles a store with the locker that goes with it.
type Persistence struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	Kind   string
	close  func() error
}

// Close releases connections held by the store.
func (p *Persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// Sessions builds a session manager over the store, serialized by the
// distributed locker when there is one.
func (p *Persistence) Sessions(logger *slog.Logger, engineOpts ...flowstep.Option) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(append([]flowstep.Option{flowstep.WithLogger(logger)}, engineOpts...)...),
	}
	if p.Locker != nil {
		opts = append(opts, session.WithLocker(p.Locker))
	}
	return session.NewManager(p.Store, opts...)
}

// OpenStore builds the store described by opts. Redis is picked when no kind
// is given and a redis URL is configured; otherwise sessions go to files.
// When FLOWSTEP_STORE_KEY is set, sessions are sealed with AES-GCM.
func OpenStore(opts StoreOptions) (*Persistence, error) {
	redisURL := opts.RedisURL
	if redisURL == "" {
		redisURL = os.Getenv(EnvRedisURL)
	}

	kind := strings.ToLower(opts.Kind)
	if kind == "" {
		kind = StoreFile
		if redisURL != "" {
			kind = StoreRedis
		}
	}

	p := &Persistence{Kind: kind}
	switch kind {
	case StoreFile:
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		p.Store = file.New(filepath.Join(dir, DefaultStoreDir))
	case StoreMemory:
		p.Store = memory.NewStore()
	case StoreRedis:
		if redisURL == "" {
			return nil, fmt.Errorf("redis store needs --redis-url or %s", EnvRedisURL)
		}
		rs, err := redis.NewFromURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		p.Store = rs
		p.Locker = redis.NewLocker(rs.Client(), rs.Prefix())
		p.close = rs.Close
	default:
		return nil, fmt.Errorf("unknown store %q (expected file, memory or redis)", opts.Kind)
	}

	mw, err := encryptionFromEnv()
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if mw != nil {
		p.Store = middleware.Chain(p.Store, mw)
	}
	return p, nil
}

func encryptionFromEnv() (middleware.Middleware, error) {
	raw := os.Getenv(EnvStoreKey)
	if raw == "" {
		return nil, nil
	}
	active, err := middleware.DecodeKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvStoreKey, err)
	}

	var fallbacks [][]byte
	for _, s := range strings.Split(os.Getenv(EnvStoreFallbackKeys), ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		k, err := middleware.DecodeKey(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvStoreFallbackKeys, err)
		}
		fallbacks = append(fallbacks, k)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallbacks,
	}), nil
}
