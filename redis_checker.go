package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/inexplicable/redis_checker/config"
	"github.com/inexplicable/redis_checker/discovery"
	"github.com/inexplicable/redis_checker/model"
	"github.com/inexplicable/redis_checker/report"
	"github.com/inexplicable/redis_checker/store"
)

// session is everything a command needs from one store connection
type session interface {
	model.StatusReader
	model.KeySource
	model.ClientLister
	Close() error
}

type dialer func(ctx context.Context, options store.Options) (session, error)

func dialStore(ctx context.Context, options store.Options) (session, error) {
	return store.Connect(ctx, options)
}

// sampleInterval is the pause between two samples of `check`
var sampleInterval = time.Second

type app struct {
	stdout   io.Writer
	dial     dialer
	interval time.Duration
}

// run is what every subcommand shares: load the config, resolve the target, connect and render
type run struct {
	cfg      *config.Config
	target   store.Target
	session  session
	renderer report.Renderer
	textfile *report.Textfile
}

func newRootCommand(stdout io.Writer, dial dialer) *cobra.Command {
	a := &app{stdout: stdout, dial: dial, interval: sampleInterval}
	cmd := &cobra.Command{
		Use:           "redis_checker",
		Short:         "Diagnose a redis instance: configuration rules, traffic anomalies, keyspace and clients",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterPersistentFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cmd.AddCommand(
		newCheckCommand(a),
		newKeysCommand(a),
		newClientsCommand(a),
	)
	return cmd
}

// resolve picks the target from consul when a service is configured, the secrets file fills in
// credentials that weren't given otherwise
func resolve(ctx context.Context, cfg *config.Config) (store.Target, error) {
	target := cfg.Target()
	secrets := &discovery.Secrets{}
	if cfg.SecretsPath != "" {
		read, err := discovery.ReadSecrets(cfg.SecretsPath)
		if err != nil {
			return store.Target{}, fmt.Errorf("secrets %s: %w", cfg.SecretsPath, err)
		}
		secrets = read
	}
	if target.Password == "" {
		target.Password = secrets.RedisPassword
	}
	if cfg.ConsulService == "" {
		return target, nil
	}

	resolver, err := discovery.NewResolver(cfg.ConsulAddr, secrets.ConsulToken)
	if err != nil {
		return store.Target{}, err
	}
	resolved, err := resolver.Resolve(ctx, cfg.ConsulService)
	if err != nil {
		return store.Target{}, err
	}
	resolved.Password = target.Password
	return resolved, nil
}

func (a *app) start(cmd *cobra.Command) (*run, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	renderer, err := report.New(cfg.Output, a.stdout)
	if err != nil {
		return nil, err
	}
	target, err := resolve(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	s, err := a.dial(cmd.Context(), cfg.StoreOptions(target))
	if err != nil {
		return nil, err
	}
	r := &run{cfg: cfg, target: target, session: s, renderer: renderer}
	if cfg.Textfile != "" {
		r.textfile = report.NewTextfile(target.Addr())
	}
	return r, nil
}

// finish writes the textfile, if one is configured
func (r *run) finish() error {
	if r.textfile == nil {
		return nil
	}
	return r.textfile.Write(r.cfg.Textfile)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(os.Stdout, dialStore).ExecuteContext(ctx)
	stop()
	log.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis_checker: %v\n", err)
		os.Exit(1)
	}
}
