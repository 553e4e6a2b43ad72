// AngelaMos | 2026
// feed.go

package rate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

// PivotCode is the currency every provider quote is expressed in.
const PivotCode = "RUB"

var ErrQuoteMissing = fmt.Errorf("currency not quoted by provider: %w", core.ErrNotFound)

// Feed is one parsed daily snapshot. Quotes are validated lazily so a single
// malformed entry never rejects the whole feed.
type Feed struct {
	Date         string
	PreviousDate string
	Timestamp    string
	quotes       map[string]gjson.Result
}

type Quote struct {
	ID       string  `json:"id"`
	NumCode  string  `json:"num_code"`
	CharCode string  `json:"char_code"`
	Nominal  int     `json:"nominal"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Previous float64 `json:"previous"`

	raw gjson.Result
}

func ParseFeed(body []byte) (*Feed, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse feed: invalid json: %w", core.ErrFormat)
	}

	root := gjson.ParseBytes(body)

	valute := root.Get("Valute")
	if !valute.IsObject() {
		return nil, fmt.Errorf("parse feed: missing Valute: %w", core.ErrFormat)
	}

	feed := &Feed{
		Date:         root.Get("Date").String(),
		PreviousDate: root.Get("PreviousDate").String(),
		Timestamp:    root.Get("Timestamp").String(),
		quotes:       make(map[string]gjson.Result),
	}

	valute.ForEach(func(key, value gjson.Result) bool {
		feed.quotes[strings.ToUpper(key.String())] = value
		return true
	})

	return feed, nil
}

func (f *Feed) Len() int {
	return len(f.quotes)
}

func (f *Feed) Codes() []string {
	codes := make([]string, 0, len(f.quotes))
	for code := range f.quotes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (f *Feed) Quote(code string) (Quote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	node, ok := f.quotes[code]
	if !ok {
		return Quote{}, fmt.Errorf("quote %s: %w", code, ErrQuoteMissing)
	}
	if !node.IsObject() {
		return Quote{}, fmt.Errorf("quote %s: not an object: %w", code, core.ErrFormat)
	}

	for _, field := range []string{"Value", "Nominal", "CharCode", "Name"} {
		if !node.Get(field).Exists() {
			return Quote{}, fmt.Errorf("quote %s: missing %s: %w", code, field, core.ErrFormat)
		}
	}

	nominal, err := integer(node.Get("Nominal"))
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: nominal: %w", code, err)
	}

	q := Quote{
		ID:       node.Get("ID").String(),
		NumCode:  node.Get("NumCode").String(),
		CharCode: node.Get("CharCode").String(),
		Nominal:  nominal,
		Name:     node.Get("Name").String(),
		Value:    node.Get("Value").Float(),
		Previous: node.Get("Previous").Float(),
		raw:      node.Get("Value"),
	}

	return q, nil
}

// Rate is the normalized per-unit value of the quote.
func (q Quote) Rate() (float64, error) {
	switch q.raw.Type {
	case gjson.Number:
		return NormalizeNumber(q.raw.Num, q.Nominal, q.CharCode)
	case gjson.String:
		return Normalize(q.raw.Str, q.Nominal, q.CharCode)
	default:
		return 0, fmt.Errorf("normalize %s: %s: %w", q.CharCode, q.raw.Raw, ErrFormat)
	}
}

// Rate looks up and normalizes code. The pivot currency is always 1.
func (f *Feed) Rate(code string) (float64, error) {
	if strings.EqualFold(code, PivotCode) {
		return 1, nil
	}

	q, err := f.Quote(code)
	if err != nil {
		return 0, err
	}
	return q.Rate()
}

func integer(res gjson.Result) (int, error) {
	switch res.Type {
	case gjson.Number:
		if res.Num != float64(int64(res.Num)) {
			return 0, fmt.Errorf("%s is not an integer: %w", res.Raw, core.ErrFormat)
		}
		return int(res.Num), nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(res.Str))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer: %w", res.Str, core.ErrFormat)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s is not an integer: %w", res.Raw, core.ErrFormat)
	}
}

// NormalizeNumber normalizes a rate the provider emitted as a JSON number.
func NormalizeNumber(value float64, nominal int, code string) (float64, error) {
	return Normalize(strconv.FormatFloat(value, 'f', -1, 64), nominal, code)
}
