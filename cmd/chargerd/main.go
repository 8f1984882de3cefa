// cmd/chargerd/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/charger-bridge/internal/api"
	"github.com/tamzrod/charger-bridge/internal/comms"
	"github.com/tamzrod/charger-bridge/internal/config"
	"github.com/tamzrod/charger-bridge/internal/exclusive"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/poller"
	"github.com/tamzrod/charger-bridge/internal/status"
	"github.com/tamzrod/charger-bridge/internal/transport/modbus"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: chargerd <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	root := newLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Transport + manager
	// --------------------

	s := cfg.Charger.Serial
	client, err := modbus.New(modbus.Config{
		Device:   s.Device,
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		Parity:   s.Parity,
		StopBits: s.StopBits,
		SlaveID:  cfg.Charger.SlaveID,
		Timeout:  time.Duration(s.TimeoutMs) * time.Millisecond,
		Log:      root.WithField("component", "modbus"),
	})
	if err != nil {
		root.Fatalf("transport open failed: %v", err)
	}
	defer client.Close()

	mgr := comms.New(client, root.WithField("component", "comms"))
	tracker := status.NewTracker(model.ChannelCount)

	guard, err := exclusive.New(mgr, exclusive.Config{
		Limit:    cfg.Retry.Limit,
		MinDelay: time.Duration(cfg.Retry.MinDelayMs) * time.Millisecond,
		MaxDelay: time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
	}, tracker, root.WithField("component", "guard"))
	if err != nil {
		root.Fatalf("guard build failed: %v", err)
	}

	// --------------------
	// Presence monitor
	// --------------------

	p, err := poller.Build(cfg.Monitor, guard, tracker)
	if err != nil {
		root.Fatalf("monitor build failed: %v", err)
	}

	out := make(chan poller.PollResult)
	go p.Run(ctx, out)

	go func() {
		mlog := root.WithField("component", "monitor")
		for {
			select {
			case <-ctx.Done():
				return
			case res := <-out:
				if res.Err != nil {
					mlog.WithError(res.Err).Debug("presence probe failed")
					continue
				}
				mlog.WithFields(log.Fields{
					"device_id":  res.Info.DeviceID,
					"ch1_status": res.Info.Ch1Status.Value(),
					"ch2_status": res.Info.Ch2Status.Value(),
				}).Trace("presence probe")
			}
		}
	}()

	// --------------------
	// HTTP
	// --------------------

	srv := api.NewServer(guard, tracker, root.WithField("component", "api"))
	srv.Start(cfg.HTTP.Listen)

	<-ctx.Done()
	root.Info("shutting down")

	if err := srv.Stop(context.Background()); err != nil {
		root.WithError(err).Warn("HTTP shutdown")
	}
}

func newLogger(c config.LoggingConfig) *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)

	if c.Format == "json" {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(c.Level)
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)

	return l
}
