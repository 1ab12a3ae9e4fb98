package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"survey-server/internal/models"
)

// Store - процессное хранилище сессий с посессионной сериализацией мутаций.
// Записи независимы: межсессионной координации нет, карта защищена RWMutex,
// у каждой сессии свой мьютекс. Посессионный мьютекс удерживается только на время
// чтения снапшота или применения мутации, никогда - на время внешних вызовов.
type Store struct {
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*entry

	ttl          time.Duration // 0 - без истечения
	reapInterval time.Duration
	stopReaper   chan struct{}
	reaperDone   chan struct{}
}

type entry struct {
	mu   sync.Mutex
	sess models.Session
}

// NewStore создает хранилище сессий. При ttl > 0 запускается фоновый реапер,
// удаляющий сессии без активности дольше ttl.
func NewStore(ttl, reapInterval time.Duration, logger *zap.Logger) *Store {
	s := &Store{
		logger:       logger.Named("SessionStore"),
		sessions:     make(map[string]*entry),
		ttl:          ttl,
		reapInterval: reapInterval,
		stopReaper:   make(chan struct{}),
		reaperDone:   make(chan struct{}),
	}
	if ttl > 0 {
		if s.reapInterval <= 0 {
			s.reapInterval = time.Minute
		}
		go s.reapLoop()
	} else {
		close(s.reaperDone)
	}
	return s
}

// Create создает новую сессию в начальном состоянии и возвращает ее копию.
func (s *Store) Create() models.Session {
	now := time.Now()
	sess := models.Session{
		ID:           uuid.NewString(),
		CurrentIndex: 0,
		Answers:      make(map[int]string),
		Status:       models.StatusAsking,
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &entry{sess: sess}
	s.mu.Unlock()

	s.logger.Info("Сессия создана", zap.String("session_id", sess.ID))
	return cloneSession(sess)
}

// Snapshot возвращает копию состояния сессии и отмечает активность.
func (s *Store) Snapshot(id string) (models.Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return models.Session{}, err
	}

	e.mu.Lock()
	e.sess.LastActivity = time.Now()
	snap := cloneSession(e.sess)
	e.mu.Unlock()

	return snap, nil
}

// Mutate атомарно применяет fn к живому состоянию сессии под посессионным
// мьютексом. Ошибка fn откатывает ход: состояние остается прежним.
func (s *Store) Mutate(id string, fn func(*models.Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Применяем fn к копии: частичная мутация при ошибке не должна протечь
	work := cloneSession(e.sess)
	if err := fn(&work); err != nil {
		return err
	}
	work.LastActivity = time.Now()
	e.sess = work
	return nil
}

// Len возвращает количество живых сессий.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close останавливает фоновый реапер.
func (s *Store) Close() {
	if s.ttl > 0 {
		close(s.stopReaper)
		<-s.reaperDone
	}
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	return e, nil
}

func (s *Store) reapLoop() {
	defer close(s.reaperDone)
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopReaper:
			return
		case <-ticker.C:
			s.reapExpired(time.Now())
		}
	}
}

// reapExpired удаляет сессии без активности дольше TTL.
func (s *Store) reapExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		e.mu.Lock()
		expired := now.Sub(e.sess.LastActivity) > s.ttl
		e.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			s.logger.Info("Сессия удалена по TTL", zap.String("session_id", id))
		}
	}
}

func cloneSession(src models.Session) models.Session {
	dst := src
	dst.Answers = make(map[int]string, len(src.Answers))
	for k, v := range src.Answers {
		dst.Answers[k] = v
	}
	return dst
}
