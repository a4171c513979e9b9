package stripe

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTokensForMinorAmount(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		name   string
		cents  int64
		tokens int64
	}{
		{"small package", 500, 100},
		{"medium package", 1000, 250},
		{"large package", 2000, 550},
		{"mega package", 5000, 1500},
		{"off-catalogue whole dollars", 700, 140},
		{"off-catalogue with cents", 1250, 250},
		{"rounding up", 1299, 260},
		{"single cent", 1, 0},
		{"zero", 0, 0},
		{"negative", -500, 0},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			c.Assert(TokensForMinorAmount(tt.cents), qt.Equals, tt.tokens)
		})
	}
}

func TestPackageMinorAmounts(t *testing.T) {
	c := qt.New(t)
	amounts := PackageMinorAmounts()
	c.Assert(amounts, qt.HasLen, 4)
	// every published package must map to its fixed grant
	for _, cents := range amounts {
		c.Assert(TokensForMinorAmount(cents), qt.Not(qt.Equals), int64(0))
	}
}
