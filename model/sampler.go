package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/golang/glog"
)

const (
	// DefaultWindow is the number of samples taken when none is configured
	DefaultWindow = 5
	// MinWindow is the least number of samples that still yields a gap
	MinWindow = 2
)

// ErrSamplerUsed is returned when `Run` is called on a sampler that already ran
var ErrSamplerUsed = errors.New("sampler already ran")

// SamplerState is where a `Sampler` is in its single run
type SamplerState int

const (
	// Idle has not sampled anything yet
	Idle SamplerState = iota
	// Sampling is in the middle of its window
	Sampling
	// Done holds a complete series
	Done
)

func (samplerState SamplerState) String() string {
	switch samplerState {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	default:
		return "done"
	}
}

// Series is the three counters sampled once per interval, all of the same length
type Series struct {
	Keys        []int64 `json:"keys" yaml:"keys"`
	Connections []int64 `json:"connections" yaml:"connections"`
	Commands    []int64 `json:"commands" yaml:"commands"`
}

// ClampWindow keeps a configured window at or above `MinWindow`
func ClampWindow(window int) int {
	if window < MinWindow {
		return MinWindow
	}
	return window
}

// Sampler reads `width` snapshots `interval` apart
// the sleep between ticks is the only place a check run waits on anything but the store
type Sampler struct {
	reader   StatusReader
	width    int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	state    SamplerState
	tick     int
}

// NewSampler initializes an `Idle` sampler, `width` is clamped by `ClampWindow`
func NewSampler(reader StatusReader, width int, interval time.Duration) *Sampler {
	return &Sampler{
		reader:   reader,
		width:    ClampWindow(width),
		interval: interval,
		sleep:    sleepContext,
		state:    Idle,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Width is the clamped window length
func (sampler *Sampler) Width() int {
	return sampler.width
}

// State is the current state of the run
func (sampler *Sampler) State() SamplerState {
	return sampler.state
}

// Run goes through every tick, there's no early exit on interesting values
func (sampler *Sampler) Run(ctx context.Context) (*Series, error) {
	if sampler.state != Idle {
		return nil, ErrSamplerUsed
	}
	sampler.state = Sampling
	series := &Series{
		Keys:        make([]int64, 0, sampler.width),
		Connections: make([]int64, 0, sampler.width),
		Commands:    make([]int64, 0, sampler.width),
	}
	for sampler.tick = 0; sampler.tick < sampler.width; sampler.tick++ {
		snapshot, err := ReadSnapshot(ctx, sampler.reader)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", sampler.tick, err)
		}
		connections, err := snapshot.Int("connected_clients")
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", sampler.tick, err)
		}
		commands, err := snapshot.Int("total_commands_processed")
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", sampler.tick, err)
		}
		series.Keys = append(series.Keys, snapshot.CommandCalls("keys"))
		series.Connections = append(series.Connections, connections)
		series.Commands = append(series.Commands, commands)
		log.V(1).Infof("<sampler> tick:%d keys:%d conns:%d commands:%d\n", sampler.tick, series.Keys[sampler.tick], connections, commands)

		if err := sampler.sleep(ctx, sampler.interval); err != nil {
			return nil, err
		}
	}
	sampler.state = Done
	return series, nil
}
