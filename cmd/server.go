package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itiky/employee-sync/service/server"
)

const (
	FlagPort     = "port"
	FlagBasePath = "base-path"
	FlagSeedFile = "seed-file"
	FlagLatency  = "latency"
	FlagFailRate = "fail-rate"
)

// GetServerCmd returns HTTP-server start command.
func GetServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the employee collection HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			opts := appConfig.Server

			// Parse inputs (flags override the environment)
			flags := cmd.Flags()
			if flags.Changed(FlagPort) {
				port, err := flags.GetInt(FlagPort)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagPort, err)
				}
				opts.Port = port
			}
			if flags.Changed(FlagBasePath) {
				basePath, err := flags.GetString(FlagBasePath)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagBasePath, err)
				}
				opts.BasePath = basePath
			}
			if flags.Changed(FlagSeedFile) {
				seedFile, err := flags.GetString(FlagSeedFile)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagSeedFile, err)
				}
				opts.SeedFile = seedFile
			}
			if flags.Changed(FlagLatency) {
				latency, err := flags.GetDuration(FlagLatency)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagLatency, err)
				}
				opts.Latency = latency
			}
			if flags.Changed(FlagFailRate) {
				failRate, err := flags.GetFloat64(FlagFailRate)
				if err != nil {
					log.Fatalf("%s flag: %v", FlagFailRate, err)
				}
				opts.FailRate = failRate
			}

			// Init service
			svc, err := server.NewEmployeeService(server.Config{
				BasePath:    opts.BasePath,
				SeedFile:    opts.SeedFile,
				Latency:     opts.Latency,
				FailRate:    opts.FailRate,
				CORSOrigins: opts.CORSOrigins,
			})
			if err != nil {
				log.Fatalf("service init: %v", err)
			}

			// Start server
			httpServer := &http.Server{
				Addr:         ":" + strconv.Itoa(opts.Port),
				Handler:      svc.Handler(),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}
			svc.Start()

			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("HTTP server: listen: %v", err)
				}
			}()

			log.Infof("HTTP server started: :%d%s", opts.Port, opts.BasePath)

			// Wait for signal
			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
			<-signalCh

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Errorf("HTTP server: shutdown: %v", err)
			}

			svc.Stop()
		},
	}
	cmd.Flags().Int(FlagPort, 2413, "(optional) server port")
	cmd.Flags().String(FlagBasePath, "/api/v1", "(optional) API path prefix")
	cmd.Flags().String(FlagSeedFile, "", "(optional) path to generated fixture file")
	cmd.Flags().Duration(FlagLatency, 0, "(optional) simulated latency per request")
	cmd.Flags().Float64(FlagFailRate, 0, "(optional) random failure rate [0.0, 1.0]")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetServerCmd())
}
