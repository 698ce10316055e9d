package model

const (
	// KiB is 1024 bytes
	KiB int64 = 1024
	// MiB is 1024 KiB
	MiB = 1024 * KiB
	// GiB is 1024 MiB
	GiB = 1024 * MiB
)

// Thresholds holds every fixed limit the rules and the gap detector compare against
type Thresholds struct {
	// KeysGap is the allowed drift of `KEYS` calls per interval
	KeysGap int64 `mapstructure:"keys-gap" json:"keys_gap" yaml:"keys_gap"`
	// ConnGap is the allowed drift of connected clients per interval
	ConnGap int64 `mapstructure:"conn-gap" json:"conn_gap" yaml:"conn_gap"`
	// MaxClientsFloor is the lowest `maxclients` left unflagged
	MaxClientsFloor int64 `mapstructure:"max-clients-floor" json:"max_clients_floor" yaml:"max_clients_floor"`
	// MaxClientsRecommended is what the max clients finding suggests instead
	MaxClientsRecommended int64 `mapstructure:"max-clients-recommended" json:"max_clients_recommended" yaml:"max_clients_recommended"`
	// ReplicaMemoryFloor is the used memory above which replica buffers are inspected
	ReplicaMemoryFloor int64 `mapstructure:"replica-memory-floor" json:"replica_memory_floor" yaml:"replica_memory_floor"`
	// ReplicaHardLimitFloor is the smallest acceptable replica hard limit
	ReplicaHardLimitFloor int64 `mapstructure:"replica-hard-limit-floor" json:"replica_hard_limit_floor" yaml:"replica_hard_limit_floor"`
}

// DefaultThresholds are the limits the checker ships with
func DefaultThresholds() Thresholds {
	return Thresholds{
		KeysGap:               0,
		ConnGap:               100,
		MaxClientsFloor:       10000,
		MaxClientsRecommended: 50000,
		ReplicaMemoryFloor:    9 * GiB,
		ReplicaHardLimitFloor: 512 * MiB,
	}
}
