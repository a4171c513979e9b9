package stripe

import (
	"math"
)

// tokenPackages maps the whole-dollar price of the published token packages
// to the amount of tokens they grant. Larger packages carry a bonus over the
// base rate.
var tokenPackages = map[int64]int64{
	5:  100,
	10: 250,
	20: 550,
	50: 1500,
}

// baseTokensPerDollar is the fallback rate applied to charges that do not
// match a published package.
const baseTokensPerDollar = 20

// TokensForMinorAmount returns the tokens granted for a charge amount
// expressed in minor currency units (cents). Published packages grant their
// fixed amount; anything else falls back to the base rate, rounded to the
// nearest token.
func TokensForMinorAmount(cents int64) int64 {
	if cents <= 0 {
		return 0
	}
	if cents%100 == 0 {
		if tokens, ok := tokenPackages[cents/100]; ok {
			return tokens
		}
	}
	return int64(math.Round(float64(cents) / 100 * baseTokensPerDollar))
}

// PackageMinorAmounts returns the minor unit amounts of the published
// packages, useful to validate a purchase request against the catalogue.
func PackageMinorAmounts() []int64 {
	amounts := make([]int64, 0, len(tokenPackages))
	for dollars := range tokenPackages {
		amounts = append(amounts, dollars*100)
	}
	return amounts
}
