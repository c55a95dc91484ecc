package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aurify/api/internal/model"
)

// Hash collections. A theme id lives in exactly one of active/old at any
// time; the move between them runs as a single Lua script so a scheduler
// double-fire can never archive the same theme twice.
const (
	KeyActiveThemes   = "themes:active"
	KeyArchivedThemes = "themes:old"
	KeyEmailConfig    = "config:email"
)

// ThemeStore defines the document-store operations the theme job needs
type ThemeStore interface {
	CountActive(ctx context.Context) (int64, error)
	ActiveThemes(ctx context.Context) (map[string]string, error)
	ArchivedThemes(ctx context.Context) (map[string]string, error)
	ArchiveTheme(ctx context.Context, id, newKey, text string) (bool, error)
	EmailConfig(ctx context.Context) (model.EmailConfig, error)
}

// archiveScript deletes the theme from the active hash and writes it into
// the archive hash under the new key, all-or-nothing. It returns 0 without
// touching anything if the id is already gone or its text no longer matches
// (another invocation won the race).
var archiveScript = redis.NewScript(`
local text = redis.call('HGET', KEYS[1], ARGV[1])
if not text or text ~= ARGV[3] then
  return 0
end
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[2], text)
return 1
`)

// RedisThemeStore implements ThemeStore on redis hashes
type RedisThemeStore struct {
	redis *redis.Client
}

func NewRedisThemeStore(redisClient *redis.Client) *RedisThemeStore {
	return &RedisThemeStore{redis: redisClient}
}

// CountActive returns the number of themes left in the active pool
func (s *RedisThemeStore) CountActive(ctx context.Context) (int64, error) {
	count, err := s.redis.HLen(ctx, KeyActiveThemes).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count active themes: %w", err)
	}
	return count, nil
}

// ActiveThemes returns the active id→text mapping
func (s *RedisThemeStore) ActiveThemes(ctx context.Context) (map[string]string, error) {
	themes, err := s.redis.HGetAll(ctx, KeyActiveThemes).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read active themes: %w", err)
	}
	return themes, nil
}

// ArchivedThemes returns the archived id→text mapping
func (s *RedisThemeStore) ArchivedThemes(ctx context.Context) (map[string]string, error) {
	themes, err := s.redis.HGetAll(ctx, KeyArchivedThemes).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read archived themes: %w", err)
	}
	return themes, nil
}

// ArchiveTheme atomically moves id→text from active to the archive under
// newKey. Returns false when the theme was already moved by a concurrent
// invocation.
func (s *RedisThemeStore) ArchiveTheme(ctx context.Context, id, newKey, text string) (bool, error) {
	moved, err := archiveScript.Run(ctx, s.redis,
		[]string{KeyActiveThemes, KeyArchivedThemes},
		id, newKey, text,
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to archive theme %q: %w", id, err)
	}
	return moved == 1, nil
}

// EmailConfig reads the operator alert sender credentials
func (s *RedisThemeStore) EmailConfig(ctx context.Context) (model.EmailConfig, error) {
	fields, err := s.redis.HGetAll(ctx, KeyEmailConfig).Result()
	if err != nil {
		return model.EmailConfig{}, fmt.Errorf("failed to read email config: %w", err)
	}
	return model.EmailConfig{
		Sender:   fields["sender"],
		Password: fields["password"],
	}, nil
}
