package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/aurify/api/internal/client"
	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/model"
	"github.com/aurify/api/internal/store"
)

// ThemeRotator defines the interface for the scheduled theme rotation job
type ThemeRotator interface {
	SelectAndRotate(ctx context.Context) (string, error)
}

// ThemeService picks one daily theme from the pool, announces it by push
// notification, and retires it to the archive. When the active pool runs
// low it alerts the operator by email.
type ThemeService struct {
	store        store.ThemeStore
	push         client.NotificationSender
	mail         client.AlertSender
	topic        string
	lowWaterMark int
}

// NewThemeService creates a new theme rotation service
func NewThemeService(themeStore store.ThemeStore, push client.NotificationSender, mail client.AlertSender, pushCfg *config.PushConfig, alertCfg *config.AlertConfig) *ThemeService {
	lowWater := alertCfg.LowWaterMark
	if lowWater <= 0 {
		lowWater = 10
	}
	return &ThemeService{
		store:        themeStore,
		push:         push,
		mail:         mail,
		topic:        pushCfg.Topic,
		lowWaterMark: lowWater,
	}
}

// SelectAndRotate runs one rotation: low-pool check, random selection,
// notification, archive. Returns a plain status string describing what
// happened. The low-pool alert fires independently of whether selection
// itself succeeds.
func (s *ThemeService) SelectAndRotate(ctx context.Context) (string, error) {
	s.checkLowWaterMark(ctx)

	active, err := s.store.ActiveThemes(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read theme pool: %w", err)
	}

	pool := active
	source := model.ThemeSourceActive
	if len(pool) == 0 {
		// Degraded mode: reuse archived themes rather than going silent.
		archived, err := s.store.ArchivedThemes(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read archived themes: %w", err)
		}
		pool = archived
		source = model.ThemeSourceArchived
	}

	if len(pool) == 0 {
		log.Println("[Theme Job] no themes available, nothing to rotate")
		return "no themes available", nil
	}

	theme := pickTheme(pool)
	log.Printf("[Theme Job] selected theme %q (source=%s)", theme.ID, source)

	if source == model.ThemeSourceActive {
		newKey := fmt.Sprintf("%s-%s", theme.ID, uuid.NewString()[:8])
		moved, err := s.store.ArchiveTheme(ctx, theme.ID, newKey, theme.Text)
		if err != nil {
			return "", fmt.Errorf("failed to archive theme: %w", err)
		}
		if !moved {
			// A concurrent invocation archived it first; it also owns the
			// notification.
			log.Printf("[Theme Job] theme %q already rotated by another run", theme.ID)
			return "theme already rotated", nil
		}
	}

	if err := s.push.SendToTopic(ctx, s.topic, "Today's theme", theme.Text); err != nil {
		// The theme is already archived; retrying would risk a duplicate
		// notification on the next fire, so log and move on.
		log.Printf("[Theme Job] notification dispatch failed: %v", err)
		return fmt.Sprintf("rotated theme %q, notification failed", theme.Text), nil
	}

	return fmt.Sprintf("rotated theme %q", theme.Text), nil
}

// checkLowWaterMark alerts the operator when the active pool is at or below
// the configured threshold. Failures here never block rotation.
func (s *ThemeService) checkLowWaterMark(ctx context.Context) {
	count, err := s.store.CountActive(ctx)
	if err != nil {
		log.Printf("[Theme Job] low-pool check failed: %v", err)
		return
	}
	if count > int64(s.lowWaterMark) {
		return
	}

	creds, err := s.store.EmailConfig(ctx)
	if err != nil {
		log.Printf("[Theme Job] could not read email config for alert: %v", err)
		return
	}

	subject := "Theme pool running low"
	body := fmt.Sprintf("Only %d active themes remain. Please add more themes.", count)
	if err := s.mail.SendAlert(creds, subject, body); err != nil {
		log.Printf("[Theme Job] low-pool alert failed: %v", err)
	}
}

// pickTheme selects one theme uniformly at random. Ids are sorted first so
// the choice is uniform over the set, not over map iteration order.
func pickTheme(pool map[string]string) model.Theme {
	ids := make([]string, 0, len(pool))
	for id := range pool {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	id := ids[rand.Intn(len(ids))]
	return model.Theme{ID: id, Text: pool[id]}
}
