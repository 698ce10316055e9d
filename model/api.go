package model

import (
	"context"
)

// StatusReader is the status side of a store connection
// `Info` returns the flattened `INFO` fields, `ConfigGet` a single `CONFIG GET` value
type StatusReader interface {
	Info(ctx context.Context, sections ...string) (map[string]string, error)
	ConfigGetter
}

// ConfigGetter looks up one named server setting
type ConfigGetter interface {
	ConfigGet(ctx context.Context, name string) (string, error)
}

// KeySource is the keyspace side of a store connection
// `Scan` is cursor based, a returned cursor of 0 means the enumeration is complete
type KeySource interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) (uint64, []string, error)
	TypeOf(ctx context.Context, key string) (KeyType, error)
	SizeOf(ctx context.Context, key string, keyType KeyType) (int64, error)
}

// ClientLister lists the connections currently attached to the store
type ClientLister interface {
	ListClients(ctx context.Context) ([]ClientInfo, error)
}

// Evaluator is the single capability of a diagnostic rule
type Evaluator interface {
	Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error)
}

// EvaluatorFunc adapts a plain function into an `Evaluator`
type EvaluatorFunc func(ctx context.Context, snapshot *Snapshot) ([]Finding, error)

// Evaluate calls the function itself
func (evaluatorFunc EvaluatorFunc) Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error) {
	return evaluatorFunc(ctx, snapshot)
}

// Sink receives the non-empty findings of one rule, under the rule's title
type Sink func(title string, findings []Finding)
