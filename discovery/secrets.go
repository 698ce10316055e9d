package discovery

import (
	"encoding/json"
	"fmt"
	"os"
)

// Secrets are the credentials kept out of flags and config files
type Secrets struct {
	ConsulToken   string
	RedisPassword string
}

type raw struct {
	ConsulToken   string `json:"consul_token"`
	RedisPassword string `json:"redis_password"`
}

func (r *raw) validate() (*Secrets, error) {
	return &Secrets{
		ConsulToken:   r.ConsulToken,
		RedisPassword: r.RedisPassword,
	}, nil
}

// ReadSecrets reads a json secrets file once
//
//	{"consul_token": "...", "redis_password": "..."}
func ReadSecrets(fname string) (*Secrets, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	return ParseSecrets(b)
}

// ParseSecrets decodes the secrets json
func ParseSecrets(b []byte) (*Secrets, error) {
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	secrets, err := r.validate()
	if err != nil {
		return nil, fmt.Errorf("secret validation failed: %w", err)
	}
	return secrets, nil
}
