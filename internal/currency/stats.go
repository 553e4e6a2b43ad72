// AngelaMos | 2026
// stats.go

package currency

import (
	"encoding/json"

	"github.com/carterperez-dev/currency-tracker/internal/model"
)

type Extreme struct {
	CharCode string  `json:"char_code"`
	Value    float64 `json:"value"`
	Name     string  `json:"name"`
}

type Stats struct {
	TotalCount int      `json:"total_count"`
	MaxValue   *Extreme `json:"max_value"`
	MinValue   *Extreme `json:"min_value"`
	AvgValue   float64  `json:"avg_value"`
}

func (s Stats) Empty() bool {
	return s.TotalCount == 0
}

// MarshalJSON renders empty stats as an empty object.
func (s Stats) MarshalJSON() ([]byte, error) {
	if s.Empty() {
		return []byte("{}"), nil
	}

	type plain Stats
	return json.Marshal(plain(s))
}

// ComputeStats picks extremes by value; ties keep the first currency in
// listing order.
func ComputeStats(currencies []model.Currency) Stats {
	if len(currencies) == 0 {
		return Stats{}
	}

	maxIdx, minIdx := 0, 0
	total := 0.0

	for i, c := range currencies {
		total += c.Value
		if c.Value > currencies[maxIdx].Value {
			maxIdx = i
		}
		if c.Value < currencies[minIdx].Value {
			minIdx = i
		}
	}

	return Stats{
		TotalCount: len(currencies),
		MaxValue:   extremeOf(currencies[maxIdx]),
		MinValue:   extremeOf(currencies[minIdx]),
		AvgValue:   total / float64(len(currencies)),
	}
}

func extremeOf(c model.Currency) *Extreme {
	return &Extreme{
		CharCode: c.CharCode,
		Value:    c.Value,
		Name:     c.Name,
	}
}
