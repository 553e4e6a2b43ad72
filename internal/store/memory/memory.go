// AngelaMos | 2026
// memory.go

package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/store"
)

// Store keeps every entity in maps guarded by a single lock; each method
// holds the lock for its whole body, which makes every write atomic.
type Store struct {
	mu sync.RWMutex

	users      map[int64]model.User
	currencies map[int64]model.Currency
	subs       map[int64]model.Subscription
	app        *model.App

	nextUserID     int64
	nextCurrencyID int64
	nextSubID      int64

	now func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		users:      make(map[int64]model.User),
		currencies: make(map[int64]model.Currency),
		subs:       make(map[int64]model.Subscription),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// touch returns a timestamp strictly after prev.
func (s *Store) touch(prev time.Time) time.Time {
	next := s.timestamp()
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}

func (s *Store) CreateUser(_ context.Context, name string) (int64, error) {
	u, err := model.NewUser(name)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = s.timestamp()
	s.users[u.ID] = u

	return u.ID, nil
}

func (s *Store) ReadUsers(_ context.Context) ([]model.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, s.summarize(u))
	}

	slices.SortFunc(out, func(a, b model.UserSummary) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	return out, nil
}

func (s *Store) ReadUser(_ context.Context, id int64) (*model.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("read user %d: %w", id, core.ErrNotFound)
	}

	summary := s.summarize(u)
	return &summary, nil
}

func (s *Store) summarize(u model.User) model.UserSummary {
	count := 0
	for _, sub := range s.subs {
		if sub.UserID == u.ID {
			count++
		}
	}
	return model.UserSummary{User: u, SubscriptionCount: count}
}

func (s *Store) UpdateUser(_ context.Context, id int64, name string) (bool, error) {
	name, err := model.ValidateName(name)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return false, nil
	}

	u.Name = name
	s.users[id] = u

	return true, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false, nil
	}

	delete(s.users, id)
	for subID, sub := range s.subs {
		if sub.UserID == id {
			delete(s.subs, subID)
		}
	}

	return true, nil
}

func (s *Store) CreateCurrency(
	_ context.Context,
	numCode, charCode, name string,
	value float64,
	nominal int,
) (int64, error) {
	c, err := model.NewCurrency(numCode, charCode, name, value, nominal)
	if err != nil {
		return 0, fmt.Errorf("create currency: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findByCode(c.CharCode); ok {
		return 0, fmt.Errorf("create currency %s: %w", c.CharCode, core.ErrDuplicateKey)
	}

	s.nextCurrencyID++
	c.ID = s.nextCurrencyID
	c.LastUpdated = s.timestamp()
	s.currencies[c.ID] = c

	return c.ID, nil
}

func (s *Store) findByCode(charCode string) (model.Currency, bool) {
	for _, c := range s.currencies {
		if c.CharCode == charCode {
			return c, true
		}
	}
	return model.Currency{}, false
}

func (s *Store) ReadCurrencies(_ context.Context) ([]model.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b model.Currency) int {
		return cmp.Compare(a.CharCode, b.CharCode)
	})

	return out, nil
}

func (s *Store) ReadCurrency(_ context.Context, id int64) (*model.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.currencies[id]
	if !ok {
		return nil, fmt.Errorf("read currency %d: %w", id, core.ErrNotFound)
	}

	return &c, nil
}

func (s *Store) ReadCurrencyByCode(
	_ context.Context,
	charCode string,
) (*model.Currency, error) {
	code := model.NormalizeCharCode(charCode)

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.findByCode(code)
	if !ok {
		return nil, fmt.Errorf("read currency %s: %w", code, core.ErrNotFound)
	}

	return &c, nil
}

func (s *Store) UpdateCurrencyValue(
	_ context.Context,
	charCode string,
	value float64,
) (bool, error) {
	code := model.NormalizeCharCode(charCode)
	if err := model.ValidateRate(value); err != nil {
		return false, fmt.Errorf("update currency %s: %w", code, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.findByCode(code)
	if !ok {
		return false, nil
	}

	c.Value = value
	c.LastUpdated = s.touch(c.LastUpdated)
	s.currencies[c.ID] = c

	return true, nil
}

func (s *Store) UpdateCurrency(
	_ context.Context,
	id int64,
	upd model.CurrencyUpdate,
) (bool, error) {
	if upd.IsEmpty() {
		return false, nil
	}

	upd, err := upd.Normalize()
	if err != nil {
		return false, fmt.Errorf("update currency %d: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.currencies[id]
	if !ok {
		return false, nil
	}

	if upd.CharCode != nil {
		if other, exists := s.findByCode(*upd.CharCode); exists && other.ID != id {
			return false, fmt.Errorf("update currency %d: %w", id, core.ErrDuplicateKey)
		}
	}

	next := upd.Apply(c)
	if err := model.ValidateCurrency(next); err != nil {
		return false, fmt.Errorf("update currency %d: %w", id, err)
	}

	next.LastUpdated = s.touch(c.LastUpdated)
	s.currencies[id] = next

	return true, nil
}

func (s *Store) DeleteCurrency(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.currencies[id]; !ok {
		return false, nil
	}

	delete(s.currencies, id)
	for subID, sub := range s.subs {
		if sub.CurrencyID == id {
			delete(s.subs, subID)
		}
	}

	return true, nil
}

func (s *Store) Subscribe(_ context.Context, userID, currencyID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false, fmt.Errorf("subscribe: user %d: %w", userID, core.ErrNotFound)
	}
	if _, ok := s.currencies[currencyID]; !ok {
		return false, fmt.Errorf("subscribe: currency %d: %w", currencyID, core.ErrNotFound)
	}

	for _, sub := range s.subs {
		if sub.UserID == userID && sub.CurrencyID == currencyID {
			return false, nil
		}
	}

	s.nextSubID++
	s.subs[s.nextSubID] = model.Subscription{
		ID:         s.nextSubID,
		UserID:     userID,
		CurrencyID: currencyID,
		CreatedAt:  s.timestamp(),
	}

	return true, nil
}

func (s *Store) Unsubscribe(_ context.Context, userID, currencyID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.subs {
		if sub.UserID == userID && sub.CurrencyID == currencyID {
			delete(s.subs, id)
			return true, nil
		}
	}

	return false, nil
}

func (s *Store) ListSubscriptions(
	_ context.Context,
	userID int64,
) ([]model.SubscribedCurrency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SubscribedCurrency, 0)
	for _, sub := range s.subs {
		if sub.UserID != userID {
			continue
		}
		c, ok := s.currencies[sub.CurrencyID]
		if !ok {
			continue
		}
		out = append(out, model.SubscribedCurrency{
			Currency:       c,
			SubscriptionID: sub.ID,
			SubscribedAt:   sub.CreatedAt,
		})
	}

	slices.SortFunc(out, func(a, b model.SubscribedCurrency) int {
		return cmp.Compare(a.CharCode, b.CharCode)
	})

	return out, nil
}

func (s *Store) SaveApp(_ context.Context, app model.App) error {
	app, err := model.NewApp(app.Name, app.Version, app.Author)
	if err != nil {
		return fmt.Errorf("save app: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	app.ID, app.Author.ID = 1, 1
	s.app = &app

	return nil
}

func (s *Store) ReadApp(_ context.Context) (*model.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.app == nil {
		return nil, fmt.Errorf("read app: %w", core.ErrNotFound)
	}

	app := *s.app
	return &app, nil
}

func (s *Store) Statistics(_ context.Context) (model.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.Statistics{
		UserCount:         len(s.users),
		CurrencyCount:     len(s.currencies),
		SubscriptionCount: len(s.subs),
	}

	for _, c := range s.currencies {
		if stats.LastUpdate == nil || c.LastUpdated.After(*stats.LastUpdate) {
			last := c.LastUpdated
			stats.LastUpdate = &last
		}
	}

	return stats, nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

var _ store.Store = (*Store)(nil)
