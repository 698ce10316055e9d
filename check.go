package main

import (
	"context"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/inexplicable/redis_checker/config"
	"github.com/inexplicable/redis_checker/model"
)

func newCheckCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the configuration rules, then sample traffic for anomalies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.start(cmd)
			if err != nil {
				return err
			}
			defer r.session.Close()
			return a.check(cmd.Context(), r)
		},
	}
	config.RegisterCheckFlags(cmd.Flags())
	return cmd
}

func (a *app) check(ctx context.Context, r *run) error {
	snapshot, err := model.ReadSnapshot(ctx, r.session)
	if err != nil {
		return err
	}
	log.Infof("<check> %s runs redis %s\n", r.target.Addr(), snapshot.Version())

	registry := model.NewRegistry().MustRegister(model.DefaultRules(r.cfg.Thresholds)...)
	findings, err := registry.Report(ctx, snapshot)
	if err != nil {
		return err
	}

	sampler := model.NewSampler(r.session, r.cfg.Seconds, a.interval)
	series, err := sampler.Run(ctx)
	if err != nil {
		return err
	}
	findings.Add(model.GapDetectorTitle, model.NewGapDetector(r.cfg.Thresholds).Detect(series))

	if err := r.renderer.Report(findings); err != nil {
		return err
	}
	if r.textfile != nil {
		r.textfile.ObserveReport(findings)
	}
	return r.finish()
}
