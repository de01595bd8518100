// vrigd - headless avatar motion daemon
//
// Runs the motion pipeline against an in-memory skeleton, fed by the VMC
// protocol receiver and (optionally) a websocket motion link, with the
// control/status web server on top. Rendering hosts embed the packages
// directly instead of running vrigd.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avatarkit/go-vrig/internal/config"
	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/motionlink"
	"github.com/avatarkit/go-vrig/pkg/pipeline"
	"github.com/avatarkit/go-vrig/pkg/recorder"
	"github.com/avatarkit/go-vrig/pkg/vmc"
	"github.com/avatarkit/go-vrig/pkg/voice"
	"github.com/avatarkit/go-vrig/pkg/vrm"
	"github.com/avatarkit/go-vrig/pkg/web"
)

// defaultExpressions is the VRM 0.x preset set assumed for headless runs;
// hosts with a loaded avatar call SetAvatar with the real set.
var defaultExpressions = []string{
	"Neutral", "A", "I", "U", "E", "O",
	"Blink", "Blink_L", "Blink_R",
	"Fun", "Angry", "Sorrow", "Surprised",
	"LookUp", "LookDown", "LookLeft", "LookRight",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	skeleton := vrm.NewMemorySkeleton()
	pipe := pipeline.New(skeleton, skeleton, pipeline.DefaultConfig())
	pipe.SetAvatar(defaultExpressions)

	rec := recorder.New()
	pipe.SetRecorder(rec)
	pipe.SetVoice(voice.New())

	receiver := vmc.NewReceiver(cfg.VMCAddr, pipe)
	if err := receiver.Start(); err != nil {
		log.Error("start vmc receiver", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.LinkURL != "" {
		link := motionlink.NewClient(cfg.LinkURL, pipe)
		go link.Run(ctx)
	}

	driver := pipeline.NewDriver(pipe, time.Duration(float64(time.Second)/cfg.TickHz))
	go driver.Run()

	server := web.NewServer(cfg.WebPort, pipe, rec)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("web server failed", "err", err)
			cancel()
		}
	}()

	log.Info("vrigd running",
		"vmc_addr", cfg.VMCAddr,
		"web_port", cfg.WebPort,
		"tick_hz", cfg.TickHz)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	receiver.Stop()
	driver.Stop()
	if err := server.Shutdown(); err != nil {
		log.Warn("web shutdown", "err", err)
	}
}
