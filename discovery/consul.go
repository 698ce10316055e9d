package discovery

import (
	"context"
	"errors"
	"fmt"

	log "github.com/golang/glog"
	consul "github.com/hashicorp/consul/api"

	"github.com/inexplicable/redis_checker/store"
)

// ErrNoHealthyInstance is returned when consul knows no passing instance of the service
var ErrNoHealthyInstance = errors.New("no healthy instance")

// Resolver finds a redis instance registered in consul
type Resolver struct {
	consulClient *consul.Client
}

// NewResolver creates a consul client, `address` and `token` fall back to consul's own defaults
// (CONSUL_HTTP_ADDR, CONSUL_HTTP_TOKEN) when empty
func NewResolver(address, token string) (*Resolver, error) {
	config := consul.DefaultConfig()
	if address != "" {
		config.Address = address
	}
	if token != "" {
		config.Token = token
	}
	consulClient, err := consul.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("consul error while creating a client: %w", err)
	}
	return &Resolver{consulClient: consulClient}, nil
}

// Resolve picks the first passing instance of `service`
func (resolver *Resolver) Resolve(ctx context.Context, service string) (store.Target, error) {
	qo := &consul.QueryOptions{
		AllowStale:        true,
		RequireConsistent: false,
	}
	instances, _, err := resolver.consulClient.Health().Service(service, "", true, qo.WithContext(ctx))
	if err != nil {
		log.Warningf("<discovery> discover `%s` service failed: %v\n", service, err)
		return store.Target{}, fmt.Errorf("discover %s: %w", service, err)
	}

	for _, instance := range instances {
		if instance.Service == nil {
			continue
		}
		host := instance.Service.Address
		if host == "" && instance.Node != nil {
			host = instance.Node.Address
		}
		if host == "" || instance.Service.Port <= 0 {
			continue
		}
		log.Infof("<discovery> resolved %s to %s:%d\n", service, host, instance.Service.Port)
		return store.Target{Host: host, Port: instance.Service.Port}, nil
	}
	return store.Target{}, fmt.Errorf("%w: %s", ErrNoHealthyInstance, service)
}
