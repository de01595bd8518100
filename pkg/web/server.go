// Package web provides the control and status surface for a running
// pipeline: REST endpoints for mode, calibration and recording, and a
// websocket stream of live pipeline status.
package web

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/pipeline"
	"github.com/avatarkit/go-vrig/pkg/recorder"
)

// statusInterval is how often live status is pushed to websocket clients.
const statusInterval = 500 * time.Millisecond

// Server is the control/status web server for one pipeline instance.
type Server struct {
	app  *fiber.App
	port string

	pipe *pipeline.Pipeline
	rec  *recorder.Recorder

	statusHub *hub

	clipsMu sync.RWMutex
	clips   map[string]*recorder.AnimationClip

	stop chan struct{}
}

// NewServer creates the server. The recorder must be the one installed on
// the pipeline.
func NewServer(port string, pipe *pipeline.Pipeline, rec *recorder.Recorder) *Server {
	s := &Server{
		port:      port,
		pipe:      pipe,
		rec:       rec,
		statusHub: newHub(),
		clips:     make(map[string]*recorder.AnimationClip),
		stop:      make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-vrig control",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/mode", s.handleGetMode)
	api.Put("/mode", s.handleSetMode)
	api.Get("/expressions", s.handleExpressions)
	api.Post("/calibrate/body", s.handleCalibrateBody)
	api.Post("/calibrate/face", s.handleCalibrateFace)
	api.Post("/calibrate/root", s.handleCalibrateRoot)
	api.Post("/record/start", s.handleRecordStart)
	api.Post("/record/stop", s.handleRecordStop)
	api.Get("/clips", s.handleListClips)
	api.Get("/clips/:id/pose", s.handleClipPose)
	api.Get("/clips/:id/export", s.handleClipExport)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(func(c *websocket.Conn) {
		s.statusHub.serve(c)
	}))

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hub, the status broadcast loop and the listener. Blocks
// until Shutdown.
func (s *Server) Start() error {
	go s.statusHub.run()
	go s.broadcastLoop()
	log.Info("web server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the listener and the broadcast loop.
func (s *Server) Shutdown() error {
	close(s.stop)
	return s.app.Shutdown()
}

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			payload, err := json.Marshal(s.pipe.Status())
			if err != nil {
				continue
			}
			s.statusHub.publish(payload)
		}
	}
}
