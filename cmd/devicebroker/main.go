// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Command devicebroker runs the device broker: it accepts device websocket
// connections, authenticates and logs them in against an external web
// application, and lets local application clients exchange request/response
// commands with logged-in devices over a control socket.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"

	"github.com/xmidt-org/devicebroker/concurrent"
	"github.com/xmidt-org/devicebroker/internal/broker"
	"github.com/xmidt-org/devicebroker/internal/frontend"
	"github.com/xmidt-org/devicebroker/internal/healthz"
	"github.com/xmidt-org/devicebroker/internal/protocol"
	"github.com/xmidt-org/devicebroker/internal/webapp"
	"github.com/xmidt-org/devicebroker/internal/worker"
	"github.com/xmidt-org/devicebroker/xmetrics"
)

const applicationName = "devicebroker"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	configFile := flagSet.StringP("config", "f", "", "path to a configuration file")
	deviceAddr := flagSet.String("device-addr", ":8080", "address the device websocket server listens on")
	appAddr := flagSet.String("app-addr", "/var/run/devicebroker.sock", "address application clients connect to (TCP if it contains ':', otherwise a UNIX socket path)")
	debugAddr := flagSet.String("debug-addr", ":8081", "address the /health and /metrics debug server listens on")
	webappURL := flagSet.String("webapp-url", "http://localhost:9000", "base URL of the external web application")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	var loggerCfg sallust.Config
	if sub := v.Sub("log"); sub != nil {
		if err := sub.Unmarshal(&loggerCfg); err != nil {
			return fmt.Errorf("unmarshaling log config: %w", err)
		}
	}

	logger, err := loggerCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	opts, err := broker.NewOptions(logger, v.Sub("broker"))
	if err != nil {
		return fmt.Errorf("unmarshaling broker config: %w", err)
	}

	registry, err := xmetrics.NewRegistry(&xmetrics.Options{Namespace: applicationName}, broker.Module)
	if err != nil {
		return fmt.Errorf("building metrics registry: %w", err)
	}

	lb := broker.New(opts)
	lb.SetMeasures(broker.NewMeasures(registry))

	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = broker.DefaultWorkerCount
	}

	webappClient := webapp.NewClient(*webappURL)
	pool := worker.NewPool(workerCount, webappClient, logger)

	deviceServer := frontend.NewDeviceServer(lb, logger)
	httpServer := &http.Server{Addr: *deviceAddr, Handler: deviceServer}

	appListener, err := frontend.Listen(*appAddr)
	if err != nil {
		return fmt.Errorf("binding application socket: %w", err)
	}
	appServer := frontend.NewApplicationServer(lb, logger)

	health := healthz.New(logger, 30*time.Second, registry)
	debugServer := &http.Server{Addr: *debugAddr, Handler: health.Handler}

	runnables := concurrent.RunnableSet{
		concurrent.RunnableFunc(poolRunnable(pool, lb, workerCount)),
		health.Health,
		concurrent.RunnableFunc(func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				if err := appServer.Serve(appListener, waitGroup, shutdown); err != nil {
					logger.Warn("application server stopped", zap.Error(err))
				}
			}()
			return nil
		}),
		concurrent.RunnableFunc(func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				<-shutdown
				_ = httpServer.Close()
			}()
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("device server failed", zap.Error(err))
				}
			}()
			return nil
		}),
		concurrent.RunnableFunc(func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				<-shutdown
				_ = debugServer.Close()
			}()
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				if err := debugServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("debug server failed", zap.Error(err))
				}
			}()
			return nil
		}),
		concurrent.RunnableFunc(pollHealth(health, lb)),
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	logger.Info("devicebroker starting",
		zap.String("deviceAddr", *deviceAddr), zap.String("appAddr", *appAddr), zap.String("debugAddr", *debugAddr))

	return concurrent.Await(runnables, signals)
}

// poolRunnable wires the load balancer's per-worker inboxes into the worker
// pool, starts the pool's goroutines, and starts one goroutine per worker
// applying that worker's outbound WorkerEvents back onto the load balancer.
func poolRunnable(pool *worker.Pool, lb *broker.LoadBalancer, workerCount int) func(*sync.WaitGroup, <-chan struct{}) error {
	return func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
		inboxes := make([]<-chan protocol.ControlMessage, workerCount)
		for i := 0; i < workerCount; i++ {
			inboxes[i] = lb.WorkerInbox(i)
		}

		if err := pool.Run(inboxes)(waitGroup, shutdown); err != nil {
			return err
		}

		for i := 0; i < workerCount; i++ {
			waitGroup.Add(1)
			go func(i int) {
				defer waitGroup.Done()
				lb.ReceiveWorkerEvents(pool.Outbox(i), shutdown)
			}(i)
		}

		return nil
	}
}

func pollHealth(h *healthz.Server, lb *broker.LoadBalancer) func(*sync.WaitGroup, <-chan struct{}) error {
	return func(waitGroup *sync.WaitGroup, shutdown <-chan struct{}) error {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					h.Poll(lb)
				case <-shutdown:
					return
				}
			}
		}()
		return nil
	}
}
