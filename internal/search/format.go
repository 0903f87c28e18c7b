package search

import (
	"fmt"
	"strings"
)

const arrow = " → "

// DescribeDirect renders a direct match as "S12D (Howrah → Esplanade → Park Street)".
func DescribeDirect(m DirectMatch) string {
	return fmt.Sprintf("%s (%s)", m.Route.Name, strings.Join(m.Stops, arrow))
}

// DescribeLeg renders a leg as "205 (Barasat → Park Street)".
func DescribeLeg(l Leg) string {
	return fmt.Sprintf("%s (%s%s%s)", l.Route.Name, l.From, arrow, l.To)
}

// DescribeCombination renders both legs joined by an arrow.
func DescribeCombination(c TransferCombination) string {
	return DescribeLeg(c.First) + arrow + DescribeLeg(c.Second)
}

// Lines renders every option of r, one per line, in result order.
func (r *Result) Lines() []string {
	var lines []string
	switch r.Kind {
	case KindDirect:
		for _, m := range r.Direct {
			lines = append(lines, DescribeDirect(m))
		}
	case KindTransfer:
		for _, c := range r.Combinations {
			lines = append(lines, DescribeCombination(c))
		}
	}
	return lines
}

// Heading is the title shown above the options of r.
func (r *Result) Heading() string {
	if r.Kind == KindTransfer {
		return "Bus Combinations:"
	}
	return "Direct Buses:"
}
