package model

import (
	"context"
	"errors"
	"fmt"

	log "github.com/golang/glog"
)

// ErrDuplicateRule is returned when a rule id is registered twice
var ErrDuplicateRule = errors.New("duplicate rule")

// Rule is a named, titled diagnostic, `Evaluator` does the actual work
type Rule struct {
	ID    string
	Title string
	Evaluator
}

// Registry holds rules in registration order, rules are never removed
type Registry struct {
	rules []Rule
	ids   map[string]struct{}
}

// NewRegistry initializes an empty `Registry`
func NewRegistry() *Registry {
	return &Registry{
		rules: []Rule{},
		ids:   map[string]struct{}{},
	}
}

// Register appends a rule, it fails on an id that's already registered
func (registry *Registry) Register(rule Rule) error {
	if rule.ID == "" || rule.Evaluator == nil {
		return fmt.Errorf("rule %q: id and evaluator are required", rule.Title)
	}
	if _, ok := registry.ids[rule.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID)
	}
	if rule.Title == "" {
		rule.Title = rule.ID
	}
	registry.ids[rule.ID] = struct{}{}
	registry.rules = append(registry.rules, rule)
	return nil
}

// MustRegister is `Register` for process wiring, a bad rule set is a programming error
func (registry *Registry) MustRegister(rules ...Rule) *Registry {
	for _, rule := range rules {
		if err := registry.Register(rule); err != nil {
			panic(err)
		}
	}
	return registry
}

// Rules lists the registered rules in order
func (registry *Registry) Rules() []Rule {
	rules := make([]Rule, len(registry.rules))
	copy(rules, registry.rules)
	return rules
}

// Evaluate runs every rule against the snapshot in registration order
// rules with no findings are skipped, the first rule error aborts the evaluation
func (registry *Registry) Evaluate(ctx context.Context, snapshot *Snapshot, sink Sink) error {
	for _, rule := range registry.rules {
		findings, err := rule.Evaluate(ctx, snapshot)
		if err != nil {
			return fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		log.V(1).Infof("<registry> rule:%s findings:%d\n", rule.ID, len(findings))
		if len(findings) > 0 {
			sink(rule.Title, findings)
		}
	}
	return nil
}

// Report evaluates everything into a fresh `Report`
func (registry *Registry) Report(ctx context.Context, snapshot *Snapshot) (*Report, error) {
	report := &Report{}
	if err := registry.Evaluate(ctx, snapshot, report.Add); err != nil {
		return nil, err
	}
	return report, nil
}
