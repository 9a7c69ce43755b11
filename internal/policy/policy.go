// Package policy implements a rule-driven pre-dispatch veto. Rules are
// govaluate expressions over transaction and payload facts; a rule that
// evaluates to true cancels the request before any network I/O.
package policy

import (
	"context"
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// RuleConfig is one named veto rule, e.g.
// {Name: "cap", Expression: "type == 'refund' && amount > 10000"}.
type RuleConfig struct {
	Name       string
	Expression string
}

type compiledRule struct {
	name string
	expr *govaluate.EvaluableExpression
}

// RequestPolicy is a pre-dispatch hook that vetoes requests matching any rule.
type RequestPolicy struct {
	rules []compiledRule
}

// NewRequestPolicy compiles the rule expressions up front so malformed rules
// fail at construction, not mid-checkout.
func NewRequestPolicy(rules []RuleConfig) (*RequestPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		expr, err := govaluate.NewEvaluableExpression(r.Expression)
		if err != nil {
			return nil, fmt.Errorf("policy: compiling rule %q: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{name: r.Name, expr: expr})
	}
	return &RequestPolicy{rules: compiled}, nil
}

// BeforeRequestSend evaluates every rule. The first rule that matches (or
// fails to evaluate) vetoes the request; the returned error is surfaced by
// the gateway as a cancelled request.
func (p *RequestPolicy) BeforeRequestSend(_ context.Context, txn *commerce.Transaction, payload *request.Payload) error {
	params := map[string]any{
		"type":       string(txn.Type),
		"amount":     payload.Amount,
		"currency":   payload.Currency,
		"order_id":   payload.OrderID,
		"item_count": len(payload.Items),
		"has_card":   payload.Card != nil,
	}
	if payload.Order != nil {
		params["order_total"] = payload.Order.TotalPrice
	} else {
		params["order_total"] = 0.0
	}

	for _, rule := range p.rules {
		verdict, err := rule.expr.Evaluate(params)
		if err != nil {
			return fmt.Errorf("policy: evaluating rule %q: %w", rule.name, err)
		}
		if matched, ok := verdict.(bool); ok && matched {
			return fmt.Errorf("policy: rule %q vetoed the request", rule.name)
		}
	}
	return nil
}
