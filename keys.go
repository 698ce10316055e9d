package main

import (
	"context"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/inexplicable/redis_checker/config"
	"github.com/inexplicable/redis_checker/model"
)

func newKeysCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Scan the keyspace: stream every key, or keep the largest per type with prefix counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.start(cmd)
			if err != nil {
				return err
			}
			defer r.session.Close()
			return a.keys(cmd.Context(), r)
		},
	}
	config.RegisterKeysFlags(cmd.Flags())
	return cmd
}

func (a *app) keys(ctx context.Context, r *run) error {
	scanner := model.NewScanner(r.session,
		model.WithMatch(r.cfg.Pattern),
		model.WithPageSize(r.cfg.Count),
		model.WithDelimiter(r.cfg.Prefix),
		model.WithTopN(r.cfg.Top),
		model.WithProbeRate(r.cfg.Rate),
	)
	if err := r.renderer.StartScan(r.cfg.Top == 0); err != nil {
		return err
	}

	var renderErr error
	result, err := scanner.Run(ctx, func(entry model.Entry) {
		if renderErr == nil {
			renderErr = r.renderer.Entry(entry)
		}
	})
	if err != nil {
		return err
	}
	if renderErr != nil {
		return renderErr
	}
	log.Infof("<keys> scanned %d keys of %s db:%d, %d probes failed\n", result.Total, r.target.Addr(), r.cfg.DB, result.Failed)

	if err := r.renderer.Scan(result); err != nil {
		return err
	}
	if r.textfile != nil {
		r.textfile.ObserveScan(result)
	}
	return r.finish()
}
