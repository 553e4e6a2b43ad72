// AngelaMos | 2026
// dto.go

package currency

import (
	"time"

	"github.com/carterperez-dev/currency-tracker/internal/model"
)

type CreateCurrencyRequest struct {
	NumCode  string  `json:"num_code"  validate:"required,len=3,number"`
	CharCode string  `json:"char_code" validate:"required,len=3,alpha"`
	Name     string  `json:"name"      validate:"required,max=255"`
	Value    float64 `json:"value"     validate:"gt=0"`
	Nominal  *int    `json:"nominal"   validate:"omitempty,gt=0"`
}

func (r CreateCurrencyRequest) NominalOrDefault() int {
	if r.Nominal == nil {
		return 1
	}
	return *r.Nominal
}

type CurrencyResponse struct {
	ID          int64     `json:"id"`
	NumCode     string    `json:"num_code"`
	CharCode    string    `json:"char_code"`
	Name        string    `json:"name"`
	Value       float64   `json:"value"`
	Nominal     int       `json:"nominal"`
	LastUpdated time.Time `json:"last_updated"`
}

func ToCurrencyResponse(c *model.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:          c.ID,
		NumCode:     c.NumCode,
		CharCode:    c.CharCode,
		Name:        c.Name,
		Value:       c.Value,
		Nominal:     c.Nominal,
		LastUpdated: c.LastUpdated,
	}
}

func ToCurrencyResponseList(currencies []model.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		out = append(out, ToCurrencyResponse(&currencies[i]))
	}
	return out
}

// LatestUpdate returns the newest last_updated in the listing, or nil.
func LatestUpdate(currencies []model.Currency) *time.Time {
	var latest *time.Time
	for i := range currencies {
		t := currencies[i].LastUpdated
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest
}
