package star

import (
	"fmt"
	"strings"

	"greencart/internal/table"
	"greencart/internal/transformer/builtin"
)

// NullPolicy decides the value of a derived flag when an operand is null.
type NullPolicy int

const (
	// NullAsFalse yields false whenever an operand is null.
	NullAsFalse NullPolicy = iota
	// NullPropagates yields a null flag whenever an operand is null.
	NullPropagates
)

func (p NullPolicy) String() string {
	if p == NullPropagates {
		return "null"
	}
	return "false"
}

// ParseNullPolicy accepts "false" (or empty) and "null".
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false":
		return NullAsFalse, nil
	case "null":
		return NullPropagates, nil
	}
	return NullAsFalse, fmt.Errorf("unknown null flag policy %q (want \"false\" or \"null\")", s)
}

func (p NullPolicy) unknown() any {
	if p == NullPropagates {
		return nil
	}
	return false
}

// lateDelivery reports delivered > estimated.
func (p NullPolicy) lateDelivery(delivered, estimated any) any {
	d, ok1 := builtin.AsTime(delivered)
	e, ok2 := builtin.AsTime(estimated)
	if !ok1 || !ok2 {
		return p.unknown()
	}
	return d.After(e)
}

// badReview reports score <= 2.
func (p NullPolicy) badReview(score any) any {
	s, ok := table.Float(score)
	if !ok {
		return p.unknown()
	}
	return s <= 2
}

// paymentMismatch reports payment < total.
func (p NullPolicy) paymentMismatch(payment, total any) any {
	pv, ok1 := table.Float(payment)
	tv, ok2 := table.Float(total)
	if !ok1 || !ok2 {
		return p.unknown()
	}
	return pv < tv
}
