package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/redis/go-redis/v9"

	"github.com/inexplicable/redis_checker/model"
)

// ErrUnsupportedType is returned by `SizeOf` for types without a cheap length command
var ErrUnsupportedType = errors.New("unsupported key type")

// ErrNoSuchConfig is returned when `CONFIG GET` matched nothing
var ErrNoSuchConfig = errors.New("no such config")

// DefaultTimeout bounds dialing and every round trip
const DefaultTimeout = 2 * time.Second

// Options configure a `Client`
type Options struct {
	Target
	DB      int
	Timeout time.Duration
}

// Client is the store connection of one run, it implements the model's
// `StatusReader`, `KeySource` and `ClientLister`
type Client struct {
	rdb    *redis.Client
	target Target
}

var (
	_ model.StatusReader = (*Client)(nil)
	_ model.KeySource    = (*Client)(nil)
	_ model.ClientLister = (*Client)(nil)
)

// Connect opens the connection and pings it, any failure here is fatal to the run
func Connect(ctx context.Context, options Options) (*Client, error) {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         options.Addr(),
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     1,
		MaxRetries:   -1,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed connecting to %s: %w", options.Addr(), err)
	}
	log.Infof("<store> connected to %s db:%d\n", options.Addr(), options.DB)
	return &Client{rdb: rdb, target: options.Target}, nil
}

// Target is where the client is connected to
func (client *Client) Target() Target {
	return client.target
}

// Close releases the connection
func (client *Client) Close() error {
	return client.rdb.Close()
}

// Info reads and flattens the given `INFO` sections
func (client *Client) Info(ctx context.Context, sections ...string) (map[string]string, error) {
	raw, err := client.rdb.Info(ctx, sections...).Result()
	if err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	return ParseInfo(raw), nil
}

// ConfigGet reads one setting, a pattern matching nothing is `ErrNoSuchConfig`
func (client *Client) ConfigGet(ctx context.Context, name string) (string, error) {
	values, err := client.rdb.ConfigGet(ctx, name).Result()
	if err != nil {
		return "", fmt.Errorf("config get %s: %w", name, err)
	}
	value, ok := values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSuchConfig, name)
	}
	return value, nil
}

// Scan fetches one page of keys
func (client *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) (uint64, []string, error) {
	keys, next, err := client.rdb.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return 0, nil, err
	}
	return next, keys, nil
}

// TypeOf is `TYPE key`
func (client *Client) TypeOf(ctx context.Context, key string) (model.KeyType, error) {
	raw, err := client.rdb.Type(ctx, key).Result()
	if err != nil {
		return model.TypeUnknown, err
	}
	return model.ParseKeyType(raw), nil
}

// SizeOf dispatches to the length command of the type
func (client *Client) SizeOf(ctx context.Context, key string, keyType model.KeyType) (int64, error) {
	switch keyType {
	case model.TypeString:
		return client.rdb.StrLen(ctx, key).Result()
	case model.TypeList:
		return client.rdb.LLen(ctx, key).Result()
	case model.TypeSet:
		return client.rdb.SCard(ctx, key).Result()
	case model.TypeZSet:
		return client.rdb.ZCard(ctx, key).Result()
	case model.TypeHash:
		return client.rdb.HLen(ctx, key).Result()
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, keyType)
	}
}

// ListClients is `CLIENT LIST`
func (client *Client) ListClients(ctx context.Context) ([]model.ClientInfo, error) {
	raw, err := client.rdb.ClientList(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("client list: %w", err)
	}
	return ParseClientList(raw), nil
}
