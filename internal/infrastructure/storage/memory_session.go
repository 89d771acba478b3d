package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
	maxSize  int
	now      func() time.Time
}

// NewMemorySessionRepository in-memory session repository yaratish
func NewMemorySessionRepository(maxManualEntries int) repository.SessionRepository {
	if maxManualEntries <= 0 {
		maxManualEntries = constants.MaxManualListEntries
	}
	return &memorySessionRepository{
		sessions: make(map[string]*entity.Session),
		maxSize:  maxManualEntries,
		now:      time.Now,
	}
}

// session must be called with the write lock held.
func (m *memorySessionRepository) session(id string) (*entity.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session id is empty")
	}
	s, exists := m.sessions[id]
	if !exists {
		now := m.now()
		s = &entity.Session{
			ID:         id,
			ManualList: []string{},
			LowFlags:   make(map[string]bool),
			CreatedAt:  now,
		}
		m.sessions[id] = s
	}
	s.LastUsed = m.now()
	return s, nil
}

// Get sessiyani olish (yo'q bo'lsa yaratiladi)
func (m *memorySessionRepository) Get(ctx context.Context, id string) (entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.session(id)
	if err != nil {
		return entity.Session{}, err
	}
	return s.Clone(), nil
}

// AddManual yozuv qo'shish
func (m *memorySessionRepository) AddManual(ctx context.Context, id, entry string) (entity.Session, error) {
	entry = strings.TrimSpace(entry)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.session(id)
	if err != nil {
		return entity.Session{}, err
	}
	if entry == "" {
		return s.Clone(), nil
	}
	for _, existing := range s.ManualList {
		if strings.EqualFold(existing, entry) {
			return s.Clone(), nil
		}
	}
	s.ManualList = append(s.ManualList, entry)

	// Maksimal hajmni nazorat qilish
	if len(s.ManualList) > m.maxSize {
		s.ManualList = s.ManualList[len(s.ManualList)-m.maxSize:]
	}
	return s.Clone(), nil
}

// RemoveManual index bo'yicha o'chirish
func (m *memorySessionRepository) RemoveManual(ctx context.Context, id string, index int) (entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.session(id)
	if err != nil {
		return entity.Session{}, err
	}
	if index < 0 || index >= len(s.ManualList) {
		return s.Clone(), fmt.Errorf("manual list index %d out of range", index)
	}
	s.ManualList = append(s.ManualList[:index], s.ManualList[index+1:]...)
	return s.Clone(), nil
}

// ClearManual ro'yxatni tozalash
func (m *memorySessionRepository) ClearManual(ctx context.Context, id string) (entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.session(id)
	if err != nil {
		return entity.Session{}, err
	}
	s.ManualList = []string{}
	return s.Clone(), nil
}

// SetLowFlag "kam qoldi" belgisini o'rnatish yoki olib tashlash
func (m *memorySessionRepository) SetLowFlag(ctx context.Context, id, name string, low bool) (entity.Session, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.session(id)
	if err != nil {
		return entity.Session{}, err
	}
	if key == "" {
		return s.Clone(), nil
	}
	if low {
		s.LowFlags[key] = true
	} else {
		delete(s.LowFlags, key)
	}
	return s.Clone(), nil
}

// Cleanup eski sessiyalarni tozalash
func (m *memorySessionRepository) Cleanup(ctx context.Context, ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	removed := 0
	for id, s := range m.sessions {
		if s.LastUsed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
