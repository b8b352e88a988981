// Package report renders estimates for terminals.
package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Mesos rounds v to whole units (half to even) and groups thousands.
func Mesos(v float64) string {
	return group(decimal.NewFromFloat(v).StringFixedBank(0))
}

// Price rounds v to whole units without grouping.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixedBank(0)
}

// Percent renders a probability as a percentage with two decimals.
func Percent(p float64) string {
	return decimal.NewFromFloat(p).Mul(hundred).StringFixedBank(2) + "%"
}

func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
