package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/agentui/pkg/ndjson"
	"github.com/papercomputeco/agentui/pkg/normalizer"
	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

// TranscriptIDHeader carries the id of the transcript recorded for an
// /agent response.
const TranscriptIDHeader = "X-Transcript-Id"

// AgentRequest is the body of POST /agent.
type AgentRequest struct {
	Message string `json:"message"`
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranscriptListResponse is the body of GET /transcripts.
type TranscriptListResponse struct {
	Transcripts []*transcript.Record `json:"transcripts"`
	Count       int                  `json:"count"`
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{Message: "AG-UI Backend is running"})
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleComponents(c *fiber.Ctx) error {
	return c.JSON(s.config.Registry.Components())
}

// handleAgent streams the normalized answer to a user message as NDJSON.
// The response is always 200: configuration and upstream failures are
// reported in-band as message events.
func (s *Server) handleAgent(c *fiber.Ctx) error {
	var req AgentRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("malformed agent request body, treating as empty message", "error", err)
		req = AgentRequest{}
	}

	rec := transcript.NewRecorder(req.Message, s.backendName())
	log := s.logger.With("request_id", rec.ID())

	opts := []normalizer.Option{
		normalizer.WithLogger(log),
		normalizer.WithObserver(rec),
	}
	if s.config.Metrics != nil {
		opts = append(opts, normalizer.WithObserver(s.config.Metrics.Observer()))
	}
	n := normalizer.New(s.config.Backend, opts...)

	ctx, cancel := context.WithCancel(s.ctx)

	// io.Pipe gives per-event backpressure: every write blocks until
	// fasthttp has read it for the chunked response. fasthttp closes the
	// body stream when it is done or the client goes away, which cancels
	// the stream context.
	pr, pw := io.Pipe()
	go s.streamAgent(ctx, cancel, n, req.Message, rec, pw, log)

	c.Set(fiber.HeaderContentType, ndjson.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(TranscriptIDHeader, rec.ID())
	c.Context().Response.SetBodyStream(&cancelReader{PipeReader: pr, cancel: cancel}, -1)

	return nil
}

func (s *Server) streamAgent(
	ctx context.Context,
	cancel context.CancelFunc,
	n *normalizer.Normalizer,
	message string,
	rec *transcript.Recorder,
	pw *io.PipeWriter,
	log *slog.Logger,
) {
	defer cancel()

	var finish func(outcome string)
	if s.config.Metrics != nil {
		finish = s.config.Metrics.StreamStarted()
	}

	log.Debug("agent stream started", "message_len", len(message))

	w := ndjson.NewWriter(pw)
	err := ndjson.Copy(w, n.Run(ctx, s.config.Prompt.Build(message)))
	cancelled := err != nil || ctx.Err() != nil

	if err != nil {
		pw.CloseWithError(err)
	} else {
		pw.Close()
	}

	record := rec.Finish(cancelled)
	outcome := record.Outcome()
	if finish != nil {
		finish(outcome)
	}

	log.Info("agent stream finished",
		"events", w.Count(),
		"outcome", outcome,
		"duration", record.Duration(),
	)

	if s.config.Transcripts != nil {
		s.config.Transcripts.Enqueue(record)
	}
}

// cancelReader cancels the stream context when fasthttp closes the body.
type cancelReader struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (r *cancelReader) Close() error {
	r.cancel()
	return r.PipeReader.Close()
}

func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", storage.DefaultListLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}

	records, err := s.driver.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list transcripts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list transcripts"})
	}

	if records == nil {
		records = []*transcript.Record{}
	}

	return c.JSON(TranscriptListResponse{Transcripts: records, Count: len(records)})
}

func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: nf.Error()})
		}
		s.logger.Error("failed to get transcript", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get transcript"})
	}

	return c.JSON(rec)
}
