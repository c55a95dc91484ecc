package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/model"
)

// fakeThemeStore is an in-memory ThemeStore with the same atomic
// compare-and-swap semantics as the redis implementation. When readBarrier
// is set, ActiveThemes blocks until every expected reader has arrived, so
// concurrent invocations deterministically observe the same snapshot.
type fakeThemeStore struct {
	mu          sync.Mutex
	active      map[string]string
	archived    map[string]string
	email       model.EmailConfig
	readBarrier *sync.WaitGroup
}

func newFakeThemeStore(active, archived map[string]string) *fakeThemeStore {
	if active == nil {
		active = map[string]string{}
	}
	if archived == nil {
		archived = map[string]string{}
	}
	return &fakeThemeStore{
		active:   active,
		archived: archived,
		email:    model.EmailConfig{Sender: "ops@example.com", Password: "secret"},
	}
}

func (s *fakeThemeStore) CountActive(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.active)), nil
}

func (s *fakeThemeStore) ActiveThemes(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	snapshot := make(map[string]string, len(s.active))
	for k, v := range s.active {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if s.readBarrier != nil {
		s.readBarrier.Done()
		s.readBarrier.Wait()
	}
	return snapshot, nil
}

func (s *fakeThemeStore) ArchivedThemes(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]string, len(s.archived))
	for k, v := range s.archived {
		snapshot[k] = v
	}
	return snapshot, nil
}

func (s *fakeThemeStore) ArchiveTheme(ctx context.Context, id, newKey, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.active[id]; !ok || current != text {
		return false, nil
	}
	delete(s.active, id)
	s.archived[newKey] = text
	return true, nil
}

func (s *fakeThemeStore) EmailConfig(ctx context.Context) (model.EmailConfig, error) {
	return s.email, nil
}

type fakePush struct {
	mu     sync.Mutex
	topics []string
	bodies []string
}

func (p *fakePush) SendToTopic(ctx context.Context, topic, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.bodies = append(p.bodies, body)
	return nil
}

func (p *fakePush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bodies)
}

type fakeMail struct {
	mu       sync.Mutex
	subjects []string
}

func (m *fakeMail) SendAlert(creds model.EmailConfig, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *fakeMail) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects)
}

func newThemeTestService(s *fakeThemeStore, p *fakePush, m *fakeMail) *ThemeService {
	return NewThemeService(s, p, m,
		&config.PushConfig{Topic: "daily_theme"},
		&config.AlertConfig{LowWaterMark: 10})
}

func TestSelectAndRotate_SingleTheme(t *testing.T) {
	store := newFakeThemeStore(map[string]string{"sunset": "golden hour"}, nil)
	push := &fakePush{}
	mail := &fakeMail{}
	svc := newThemeTestService(store, push, mail)

	status, err := svc.SelectAndRotate(context.Background())
	if err != nil {
		t.Fatalf("rotation failed: %v", err)
	}
	if !strings.Contains(status, "golden hour") {
		t.Errorf("status should reference the theme text: %q", status)
	}

	if len(store.active) != 0 {
		t.Errorf("active pool should be empty, has %v", store.active)
	}
	if len(store.archived) != 1 {
		t.Fatalf("expected exactly one archived entry, got %v", store.archived)
	}
	for key, text := range store.archived {
		if key == "sunset" {
			t.Error("archival key must differ from the original id")
		}
		if !strings.HasPrefix(key, "sunset-") {
			t.Errorf("archival key should derive from the id: %q", key)
		}
		if text != "golden hour" {
			t.Errorf("archived text changed: %q", text)
		}
	}

	if push.count() != 1 {
		t.Fatalf("expected one notification, got %d", push.count())
	}
	if !strings.Contains(push.bodies[0], "golden hour") {
		t.Errorf("notification should carry the theme text: %q", push.bodies[0])
	}
	if push.topics[0] != "daily_theme" {
		t.Errorf("notification sent to wrong topic: %q", push.topics[0])
	}
}

func TestSelectAndRotate_LowWaterAlert(t *testing.T) {
	active := map[string]string{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		active[id] = "theme " + id
	}
	store := newFakeThemeStore(active, nil)
	push := &fakePush{}
	mail := &fakeMail{}
	svc := newThemeTestService(store, push, mail)

	if _, err := svc.SelectAndRotate(context.Background()); err != nil {
		t.Fatalf("rotation failed: %v", err)
	}

	// 10 themes is at the low-water mark
	if mail.count() != 1 {
		t.Errorf("expected exactly one alert, got %d", mail.count())
	}
	if push.count() != 1 {
		t.Errorf("alert must not block rotation: got %d notifications", push.count())
	}
}

func TestSelectAndRotate_NoAlertAboveLowWater(t *testing.T) {
	active := map[string]string{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		active[id] = "theme " + id
	}
	store := newFakeThemeStore(active, nil)
	push := &fakePush{}
	mail := &fakeMail{}
	svc := newThemeTestService(store, push, mail)

	if _, err := svc.SelectAndRotate(context.Background()); err != nil {
		t.Fatalf("rotation failed: %v", err)
	}
	if mail.count() != 0 {
		t.Errorf("expected no alert above the low-water mark, got %d", mail.count())
	}
}

func TestSelectAndRotate_ArchivedFallback(t *testing.T) {
	store := newFakeThemeStore(nil, map[string]string{"old-1": "retro vibes"})
	push := &fakePush{}
	mail := &fakeMail{}
	svc := newThemeTestService(store, push, mail)

	status, err := svc.SelectAndRotate(context.Background())
	if err != nil {
		t.Fatalf("rotation failed: %v", err)
	}
	if !strings.Contains(status, "retro vibes") {
		t.Errorf("status should reference the reused theme: %q", status)
	}

	if push.count() != 1 {
		t.Fatalf("expected one notification, got %d", push.count())
	}
	// Archived themes are reused, never moved again
	if len(store.archived) != 1 {
		t.Errorf("archive should be untouched, got %v", store.archived)
	}
	if _, ok := store.archived["old-1"]; !ok {
		t.Error("archived theme key changed")
	}
}

func TestSelectAndRotate_BothPoolsEmpty(t *testing.T) {
	store := newFakeThemeStore(nil, nil)
	push := &fakePush{}
	mail := &fakeMail{}
	svc := newThemeTestService(store, push, mail)

	status, err := svc.SelectAndRotate(context.Background())
	if err != nil {
		t.Fatalf("empty rotation should not error: %v", err)
	}
	if !strings.Contains(status, "no themes") {
		t.Errorf("unexpected status: %q", status)
	}
	if push.count() != 0 {
		t.Errorf("nothing should be announced, got %d notifications", push.count())
	}
	// Alert still fires: zero is at the low-water mark
	if mail.count() != 1 {
		t.Errorf("expected one alert for an empty pool, got %d", mail.count())
	}
}

func TestSelectAndRotate_ConcurrentDoubleFire(t *testing.T) {
	store := newFakeThemeStore(map[string]string{"sunset": "golden hour"}, nil)
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	store.readBarrier = barrier

	push := &fakePush{}
	mail := &fakeMail{}
	svc := newThemeTestService(store, push, mail)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SelectAndRotate(context.Background()); err != nil {
				t.Errorf("rotation failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(store.archived) != 1 {
		t.Errorf("double-fire produced %d archival records, want 1: %v", len(store.archived), store.archived)
	}
	if push.count() > 1 {
		t.Errorf("double-fire produced %d notifications, want at most 1", push.count())
	}
}
