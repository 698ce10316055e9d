package model

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingField is returned when a status field a rule depends on is absent
var ErrMissingField = errors.New("missing status field")

// Snapshot is a point-in-time read of the store status, it's never mutated after creation
type Snapshot struct {
	fields  map[string]string
	version Version
	config  ConfigGetter
	taken   time.Time
}

// NewSnapshot copies `fields` and parses `redis_version` out of it
func NewSnapshot(fields map[string]string, config ConfigGetter) (*Snapshot, error) {
	readOnly := make(map[string]string, len(fields))
	for k, v := range fields {
		readOnly[k] = v
	}
	raw, ok := readOnly["redis_version"]
	if !ok {
		return nil, fmt.Errorf("%w: redis_version", ErrMissingField)
	}
	version, err := ParseVersion(raw)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		fields:  readOnly,
		version: version,
		config:  config,
		taken:   time.Now(),
	}, nil
}

// ReadSnapshot takes a fresh snapshot of every `INFO` section
func ReadSnapshot(ctx context.Context, reader StatusReader) (*Snapshot, error) {
	fields, err := reader.Info(ctx, "all")
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	return NewSnapshot(fields, reader)
}

// Version is the parsed server version
func (snapshot *Snapshot) Version() Version {
	return snapshot.version
}

// Taken is the local time the snapshot was created
func (snapshot *Snapshot) Taken() time.Time {
	return snapshot.taken
}

// Lookup returns the raw field and whether it was present
func (snapshot *Snapshot) Lookup(name string) (string, bool) {
	value, ok := snapshot.fields[name]
	return value, ok
}

// String returns the raw field, or `ErrMissingField`
func (snapshot *Snapshot) String(name string) (string, error) {
	if value, ok := snapshot.fields[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingField, name)
}

// Int parses the field as a base 10 integer
func (snapshot *Snapshot) Int(name string) (int64, error) {
	raw, err := snapshot.String(name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return value, nil
}

// Float parses the field as a float
func (snapshot *Snapshot) Float(name string) (float64, error) {
	raw, err := snapshot.String(name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return value, nil
}

// CommandCalls is the `calls` counter of a `cmdstat_<command>` line, 0 when the command was never called
//
//	cmdstat_setex:calls=1486470,usec=3265266,usec_per_call=2.20
func (snapshot *Snapshot) CommandCalls(command string) int64 {
	raw, ok := snapshot.fields["cmdstat_"+strings.ToLower(command)]
	if !ok {
		return 0
	}
	for _, pair := range strings.Split(raw, ",") {
		if name, value, found := strings.Cut(pair, "="); found && name == "calls" {
			if calls, err := strconv.ParseInt(value, 10, 64); err == nil {
				return calls
			}
		}
	}
	return 0
}

// Config reads a server setting through the connection the snapshot came from
func (snapshot *Snapshot) Config(ctx context.Context, name string) (string, error) {
	if snapshot.config == nil {
		return "", fmt.Errorf("config %s: no config source", name)
	}
	value, err := snapshot.config.ConfigGet(ctx, name)
	if err != nil {
		return "", fmt.Errorf("config %s: %w", name, err)
	}
	return value, nil
}

// ConfigInt is `Config` parsed as an integer
func (snapshot *Snapshot) ConfigInt(ctx context.Context, name string) (int64, error) {
	raw, err := snapshot.Config(ctx, name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", name, err)
	}
	return value, nil
}
