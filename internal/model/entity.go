// AngelaMos | 2026
// entity.go

package model

import (
	"time"
)

type Author struct {
	ID    int64  `db:"id"         json:"id"`
	Name  string `db:"name"       json:"name"`
	Group string `db:"group_name" json:"group"`
}

type App struct {
	ID      int64  `db:"id"      json:"id"`
	Name    string `db:"name"    json:"name"`
	Version string `db:"version" json:"version"`
	Author  Author `db:"-"       json:"author"`
}

type User struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UserSummary struct {
	User
	SubscriptionCount int `db:"subscription_count" json:"subscription_count"`
}

type Currency struct {
	ID          int64     `db:"id"           json:"id"`
	NumCode     string    `db:"num_code"     json:"num_code"`
	CharCode    string    `db:"char_code"    json:"char_code"`
	Name        string    `db:"name"         json:"name"`
	Value       float64   `db:"value"        json:"value"`
	Nominal     int       `db:"nominal"      json:"nominal"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

type Subscription struct {
	ID         int64     `db:"id"          json:"id"`
	UserID     int64     `db:"user_id"     json:"user_id"`
	CurrencyID int64     `db:"currency_id" json:"currency_id"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// SubscribedCurrency is a subscription joined with its currency row.
type SubscribedCurrency struct {
	Currency
	SubscriptionID int64     `db:"subscription_id" json:"subscription_id"`
	SubscribedAt   time.Time `db:"subscribed_at"   json:"subscribed_at"`
}

type Statistics struct {
	UserCount         int        `db:"user_count"         json:"user_count"`
	CurrencyCount     int        `db:"currency_count"     json:"currency_count"`
	SubscriptionCount int        `db:"subscription_count" json:"subscription_count"`
	LastUpdate        *time.Time `db:"last_update"        json:"last_update"`
}

// CurrencyUpdate carries the mutable currency fields; nil fields are left
// untouched.
type CurrencyUpdate struct {
	NumCode  *string
	CharCode *string
	Name     *string
	Value    *float64
	Nominal  *int
}

func (u CurrencyUpdate) IsEmpty() bool {
	return u.NumCode == nil && u.CharCode == nil && u.Name == nil &&
		u.Value == nil && u.Nominal == nil
}

// Apply returns c with the update merged in. The result is not validated.
func (u CurrencyUpdate) Apply(c Currency) Currency {
	if u.NumCode != nil {
		c.NumCode = *u.NumCode
	}
	if u.CharCode != nil {
		c.CharCode = *u.CharCode
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Value != nil {
		c.Value = *u.Value
	}
	if u.Nominal != nil {
		c.Nominal = *u.Nominal
	}
	return c
}
