// AngelaMos | 2026
// normalize.go

package rate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

const Precision = 4

var (
	ErrFormat = fmt.Errorf("unparsable rate: %w", core.ErrFormat)
	ErrDomain = fmt.Errorf("nominal must be positive: %w", core.ErrInvalidInput)
)

// Normalize converts a provider quote into a per-unit rate rounded half-up
// to four decimal places. raw may use a comma as the decimal separator.
func Normalize(raw string, nominal int, code string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")

	value, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("normalize %s: %q: %w", code, raw, ErrFormat)
	}

	if nominal <= 0 {
		return 0, fmt.Errorf("normalize %s: nominal %d: %w", code, nominal, ErrDomain)
	}

	perUnit := value.Div(decimal.NewFromInt(int64(nominal))).Round(Precision)
	f, _ := perUnit.Float64()

	return f, nil
}
