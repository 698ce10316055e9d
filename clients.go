package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/inexplicable/redis_checker/model"
)

func newClientsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "Count connected clients per source ip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.start(cmd)
			if err != nil {
				return err
			}
			defer r.session.Close()
			return a.clients(cmd.Context(), r)
		},
	}
}

func (a *app) clients(ctx context.Context, r *run) error {
	clients, err := r.session.ListClients(ctx)
	if err != nil {
		return err
	}
	summary := model.SummarizeClients(clients)
	if err := r.renderer.Clients(summary); err != nil {
		return err
	}
	if r.textfile != nil {
		r.textfile.ObserveClients(summary)
	}
	return r.finish()
}
