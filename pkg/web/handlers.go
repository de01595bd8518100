package web

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/avatarkit/go-vrig/pkg/pipeline"
)

// handleStatus returns the pipeline status snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.pipe.Status())
}

// handleGetMode returns the current tracking mode.
func (s *Server) handleGetMode(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"mode": s.pipe.Mode().String()})
}

// SetModeRequest is the request body for PUT /api/mode.
type SetModeRequest struct {
	Mode string `json:"mode"`
}

// handleSetMode switches the tracking mode.
func (s *Server) handleSetMode(c *fiber.Ctx) error {
	var req SetModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	mode, ok := pipeline.ParseMode(req.Mode)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown mode: " + req.Mode,
		})
	}
	s.pipe.SetMode(mode)
	return c.JSON(fiber.Map{"mode": mode.String()})
}

// handleExpressions returns the avatar's declared expression set.
func (s *Server) handleExpressions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"expressions": s.pipe.AvailableExpressions()})
}

// handleCalibrateBody arms one-shot body calibration. The sample is taken
// from the next solved frame; with no active solve session the request
// stays pending, which is reported rather than treated as an error.
func (s *Server) handleCalibrateBody(c *fiber.Ctx) error {
	s.pipe.Calibration().RequestBody()
	return c.JSON(fiber.Map{"body_calibration": s.pipe.Calibration().BodyState().String()})
}

// handleCalibrateFace arms one-shot gaze calibration.
func (s *Server) handleCalibrateFace(c *fiber.Ctx) error {
	s.pipe.Calibration().RequestFace()
	return c.JSON(fiber.Map{"face_calibration": s.pipe.Calibration().FaceState().String()})
}

// handleCalibrateRoot re-arms external-protocol root calibration.
func (s *Server) handleCalibrateRoot(c *fiber.Ctx) error {
	s.pipe.Calibration().ArmExternalRoot()
	return c.JSON(fiber.Map{"external_root": "armed"})
}

// handleRecordStart starts (or restarts) a recording session.
func (s *Server) handleRecordStart(c *fiber.Ctx) error {
	s.rec.Start()
	return c.JSON(fiber.Map{"recording": true})
}

// ClipSummary describes a stored clip.
type ClipSummary struct {
	ID       string  `json:"id"`
	Duration float64 `json:"duration"`
	Tracks   int     `json:"tracks"`
}

// handleRecordStop stops recording. With no motion data captured it
// returns 204 rather than an error.
func (s *Server) handleRecordStop(c *fiber.Ctx) error {
	clip, ok := s.rec.Stop()
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}

	s.clipsMu.Lock()
	s.clips[clip.ID] = clip
	s.clipsMu.Unlock()

	return c.JSON(ClipSummary{
		ID:       clip.ID,
		Duration: clip.Duration,
		Tracks:   len(clip.Tracks),
	})
}

// handleListClips returns summaries of all stored clips.
func (s *Server) handleListClips(c *fiber.Ctx) error {
	s.clipsMu.RLock()
	defer s.clipsMu.RUnlock()
	out := make([]ClipSummary, 0, len(s.clips))
	for _, clip := range s.clips {
		out = append(out, ClipSummary{
			ID:       clip.ID,
			Duration: clip.Duration,
			Tracks:   len(clip.Tracks),
		})
	}
	return c.JSON(out)
}

// handleClipPose exports a single pose from a clip at query time t
// (seconds, default 0) in the Blender importer's JSON layout.
func (s *Server) handleClipPose(c *fiber.Ctx) error {
	s.clipsMu.RLock()
	clip, ok := s.clips[c.Params("id")]
	s.clipsMu.RUnlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "clip not found"})
	}

	t, _ := strconv.ParseFloat(c.Query("t", "0"), 64)

	var buf bytes.Buffer
	if err := clip.WritePoseJSON(&buf, t); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}

// handleClipExport exports the whole clip resampled at query fps
// (default 30).
func (s *Server) handleClipExport(c *fiber.Ctx) error {
	s.clipsMu.RLock()
	clip, ok := s.clips[c.Params("id")]
	s.clipsMu.RUnlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "clip not found"})
	}

	fps, _ := strconv.ParseFloat(c.Query("fps", "30"), 64)

	var buf bytes.Buffer
	if err := clip.WriteClipJSON(&buf, fps); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}
