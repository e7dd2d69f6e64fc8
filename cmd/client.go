package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itiky/employee-sync/service/client"
	"github.com/itiky/employee-sync/view"
)

const (
	FlagServerUrl  = "server-url"
	FlagTimeout    = "timeout"
	FlagUpdateMode = "update-mode"
	FlagReconcile  = "reconcile"
	FlagMonitor    = "monitor"
)

// GetClientCmd returns the interactive client command.
func GetClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Start the interactive employee list client",
		Run: func(cmd *cobra.Command, args []string) {
			opts := appConfig.Client

			// Parse inputs (flags override the environment)
			flags := cmd.Flags()
			if flags.Changed(FlagServerUrl) {
				serverUrl, err := flags.GetString(FlagServerUrl)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagServerUrl, err)
				}
				opts.ApiUrl = serverUrl
			}
			if flags.Changed(FlagTimeout) {
				timeout, err := flags.GetDuration(FlagTimeout)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagTimeout, err)
				}
				opts.Timeout = timeout
			}
			if flags.Changed(FlagUpdateMode) {
				updateMode, err := flags.GetString(FlagUpdateMode)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagUpdateMode, err)
				}
				opts.UpdateMode = updateMode
			}
			if flags.Changed(FlagReconcile) {
				reconcileMode, err := flags.GetString(FlagReconcile)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagReconcile, err)
				}
				opts.ReconcileMode = reconcileMode
			}
			withMonitor, err := flags.GetBool(FlagMonitor)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagMonitor, err)
			}

			updateMode, err := client.ParseUpdateMode(opts.UpdateMode)
			if err != nil {
				log.Fatalf("%s: %v", FlagUpdateMode, err)
			}
			reconcileMode, err := client.ParseReconcileMode(opts.ReconcileMode)
			if err != nil {
				log.Fatalf("%s: %v", FlagReconcile, err)
			}

			// Init controller
			remote, err := client.NewHTTPCollection(opts.ApiUrl, opts.Timeout)
			if err != nil {
				log.Fatalf("remote collection init: %v", err)
			}

			out := view.NewSyncWriter(os.Stdout)
			ctrl, err := client.NewRecordSyncController(remote, client.NewWriterNotifier(out), client.ControllerConfig{
				UpdateMode:    updateMode,
				ReconcileMode: reconcileMode,
			})
			if err != nil {
				log.Fatalf("controller init: %v", err)
			}

			if withMonitor {
				client.StartMonitor()
				defer client.StopMonitor()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Initial load, failures are logged only
			if err := ctrl.Load(ctx); err == nil {
				view.RenderCards(out, ctrl.Records())
			}

			if err := view.NewShell(ctrl, os.Stdin, out).Run(ctx); err != nil {
				log.Errorf("shell: %v", err)
			}
		},
	}
	cmd.Flags().String(FlagServerUrl, "http://127.0.0.1:2413/api/v1", "(optional) employee API base URL")
	cmd.Flags().Duration(FlagTimeout, 10*time.Second, "(optional) remote request timeout")
	cmd.Flags().String(FlagUpdateMode, string(client.UpdateModeFixed), "(optional) update body source: fixed (placeholder values) or form")
	cmd.Flags().String(FlagReconcile, string(client.ReconcileNone), "(optional) local list reconciliation after mutations: none, refetch or patch")
	cmd.Flags().Bool(FlagMonitor, false, "(optional) log periodic request stats")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetClientCmd())
}
