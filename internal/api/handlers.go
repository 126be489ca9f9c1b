package api

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"voicetag/internal/audio"
	"voicetag/internal/history"
	"voicetag/internal/inference"
	"voicetag/internal/logging"
)

const maxHistoryLimit = 500

func (s *Server) handleHealth(c *fiber.Ctx) error {
	a, err := s.assets.Load()
	if err != nil {
		return s.writeError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:      statusOK,
		Fingerprint: a.Fingerprint,
		Features:    len(a.SelectedFeatures),
	})
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return s.writeError(c, fiber.StatusBadRequest, "multipart field \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return s.writeError(c, fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return s.writeError(c, fiber.StatusBadRequest, "cannot read uploaded file")
	}
	if len(data) == 0 {
		return s.writeError(c, fiber.StatusBadRequest, "uploaded file is empty")
	}
	return s.predict(c, inference.Request{Data: data, Filename: header.Filename, Source: audio.SourceUpload})
}

func (s *Server) handleRecord(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return s.writeError(c, fiber.StatusBadRequest, "request body must contain WAV audio")
	}
	// fiber reuses the request buffer after the handler returns.
	data := append([]byte(nil), body...)
	return s.predict(c, inference.Request{Data: data, Filename: "recording.wav", Source: audio.SourceRecorder})
}

func (s *Server) predict(c *fiber.Ctx, req inference.Request) error {
	out, err := s.predictor.Run(c.UserContext(), req)
	if err != nil {
		status := fiber.StatusInternalServerError
		if inference.IsRequestError(err) {
			status = fiber.StatusUnprocessableEntity
		}
		return s.writeError(c, status, inference.UserMessage(err))
	}
	return c.Status(fiber.StatusOK).JSON(FromOutcome(out))
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return s.writeError(c, fiber.StatusNotFound, "prediction history is disabled")
	}
	limit := c.QueryInt("limit", history.DefaultListLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		return s.writeError(c, fiber.StatusBadRequest, "limit must be between 1 and 500")
	}
	records, err := s.history.List(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("history query failed", logging.Error(err))
		return s.writeError(c, fiber.StatusInternalServerError, "history unavailable")
	}
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, FromRecord(rec))
	}
	return c.Status(fiber.StatusOK).JSON(HistoryResponse{Status: statusOK, Entries: entries})
}

func (s *Server) writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Status: statusError, Message: message})
}

// handleFiberError renders framework errors such as 404 routes and oversized
// bodies in the same envelope as handler errors.
func (s *Server) handleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return s.writeError(c, fe.Code, fe.Message)
	}
	s.logger.Error("unhandled api error", logging.Error(err))
	return s.writeError(c, fiber.StatusInternalServerError, "internal error")
}
