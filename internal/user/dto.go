// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/currency-tracker/internal/model"
)

type CreateUserRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type SubscriptionRequest struct {
	CurrencyID *int64 `json:"currency_id" validate:"required,gt=0"`
}

// Profile is a user with its subscriptions resolved.
type Profile struct {
	model.UserSummary
	Subscriptions []model.SubscribedCurrency
}

type UserResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	CreatedAt         time.Time `json:"created_at"`
	SubscriptionCount int       `json:"subscription_count"`
}

type SubscriptionResponse struct {
	SubscriptionID int64     `json:"subscription_id"`
	CurrencyID     int64     `json:"currency_id"`
	CharCode       string    `json:"char_code"`
	Name           string    `json:"name"`
	Value          float64   `json:"value"`
	Nominal        int       `json:"nominal"`
	SubscribedAt   time.Time `json:"subscribed_at"`
}

type ProfileResponse struct {
	UserResponse
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

func ToUserResponse(u *model.UserSummary) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		CreatedAt:         u.CreatedAt,
		SubscriptionCount: u.SubscriptionCount,
	}
}

func ToUserResponseList(users []model.UserSummary) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func ToSubscriptionResponse(s *model.SubscribedCurrency) SubscriptionResponse {
	return SubscriptionResponse{
		SubscriptionID: s.SubscriptionID,
		CurrencyID:     s.ID,
		CharCode:       s.CharCode,
		Name:           s.Name,
		Value:          s.Value,
		Nominal:        s.Nominal,
		SubscribedAt:   s.SubscribedAt,
	}
}

func ToProfileResponse(p *Profile) ProfileResponse {
	subs := make([]SubscriptionResponse, 0, len(p.Subscriptions))
	for i := range p.Subscriptions {
		subs = append(subs, ToSubscriptionResponse(&p.Subscriptions[i]))
	}
	return ProfileResponse{
		UserResponse:  ToUserResponse(&p.UserSummary),
		Subscriptions: subs,
	}
}
