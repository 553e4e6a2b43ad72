// AngelaMos | 2026
// seed.go

package model

// SeedUsers, SeedCurrencies and SeedSubscriptions form the sample dataset
// loaded into an empty store. Subscription pairs are 1-based positions in
// the user and currency slices.
var SeedUsers = []string{
	"Иван Иванов",
	"Мария Петрова",
	"Алексей Сидоров",
}

var SeedCurrencies = []Currency{
	{NumCode: "840", CharCode: "USD", Name: "Доллар США", Value: 93.25, Nominal: 1},
	{NumCode: "978", CharCode: "EUR", Name: "Евро", Value: 101.70, Nominal: 1},
	{NumCode: "826", CharCode: "GBP", Name: "Фунт стерлингов", Value: 118.45, Nominal: 1},
	{NumCode: "156", CharCode: "CNY", Name: "Китайский юань", Value: 12.89, Nominal: 1},
	{NumCode: "392", CharCode: "JPY", Name: "Японская иена", Value: 0.63, Nominal: 100},
}

var SeedSubscriptions = [][2]int{
	{1, 1},
	{1, 2},
	{2, 2},
	{3, 3},
}
