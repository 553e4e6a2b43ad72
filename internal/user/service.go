// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/store"
)

var (
	ErrUserNotFound       = fmt.Errorf("user not found: %w", core.ErrNotFound)
	ErrCurrencyNotFound   = fmt.Errorf("currency not found: %w", core.ErrNotFound)
	ErrAlreadySubscribed  = fmt.Errorf("user is already subscribed to this currency: %w", core.ErrDuplicateKey)
	ErrSubscriptionAbsent = fmt.Errorf("subscription not found: %w", core.ErrNotFound)
)

type Store interface {
	store.UserStore
	store.SubscriptionStore
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

func (s *Service) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	return s.store.ReadUsers(ctx)
}

// GetUser returns the user together with its subscribed currencies.
func (s *Service) GetUser(ctx context.Context, id int64) (*Profile, error) {
	u, err := s.store.ReadUser(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubscriptions(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Profile{UserSummary: *u, Subscriptions: subs}, nil
}

func (s *Service) CreateUser(ctx context.Context, name string) (*model.UserSummary, error) {
	u, err := model.NewUser(name)
	if err != nil {
		return nil, err
	}

	id, err := s.store.CreateUser(ctx, u.Name)
	if err != nil {
		return nil, err
	}

	return s.store.ReadUser(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	name string,
) (*model.UserSummary, error) {
	name, err := model.ValidateName(name)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.UpdateUser(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("update user %d: %w", id, ErrUserNotFound)
	}

	return s.store.ReadUser(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}
	return nil
}

func (s *Service) Subscribe(
	ctx context.Context,
	userID, currencyID int64,
) (*model.SubscribedCurrency, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	ok, err := s.store.Subscribe(ctx, userID, currencyID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("subscribe %d: %w", currencyID, ErrCurrencyNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadySubscribed
	}

	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].ID == currencyID {
			return &subs[i], nil
		}
	}

	return nil, fmt.Errorf("subscription %d/%d vanished: %w", userID, currencyID, core.ErrStore)
}

func (s *Service) Unsubscribe(ctx context.Context, userID, currencyID int64) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	ok, err := s.store.Unsubscribe(ctx, userID, currencyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSubscriptionAbsent
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, id int64) error {
	_, err := s.store.ReadUser(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	return err
}
