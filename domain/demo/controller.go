package demo

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/pkg/sse"
)

const (
	sessionCreationsPerMinute = 10
	messagesPerMinute         = 30
	streamKeepAlive           = 15 * time.Second
	transcriptEvent           = "transcript"
)

func NewDemoController(registry *Registry, logger *log.Logger) *router.RESTController {
	return router.NewVersionedRESTController(
		"DemoController",
		"v1",
		"/demo",
		func(rs *router.RouterService, c *router.RESTController) {
			sessionLimiter := rs.NewRateLimiter("demo-sessions", sessionCreationsPerMinute, time.Minute)
			messageLimiter := rs.NewRateLimiter("demo-messages", messagesPerMinute, time.Minute)

			rs.AddPostHandler(c, sessionLimiter, "/sessions", createSessionHandler(registry, logger))
			rs.AddGetHandler(c, nil, "/sessions/:id", getTranscriptHandler(registry))
			rs.AddPostHandler(c, sessionLimiter, "/sessions/:id/restart", restartSessionHandler(registry, logger))
			rs.AddPostHandler(c, messageLimiter, "/sessions/:id/messages", sendMessageHandler(registry, logger))
			rs.AddStreamHandler(c, nil, "/sessions/:id/events", streamTranscriptHandler(registry, logger))
			rs.AddGetHandler(c, nil, "/queries", getExampleQueriesHandler())
			rs.AddGetHandler(c, nil, "/contacts", getContactsHandler())
		},
	)
}

func createSessionHandler(registry *Registry, logger *log.Logger) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		session, err := registry.Create()
		if err != nil {
			router.GetLogger(ctx).Warn("Failed to create demo session", "error", err)
			return router.ErrorResult(http.StatusServiceUnavailable, "The demo is busy right now. Please try again shortly.", nil)
		}

		if err := startPlayback(session, logger); err != nil {
			router.GetLogger(ctx).Warn("Failed to start demo session", "session_id", session.ID, "error", err)
			return router.NotFoundResult("Demo session not found")
		}

		return router.CreatedResult(SessionResponse{SessionID: session.ID}, "Demo session")
	}
}

func getTranscriptHandler(registry *Registry) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		session, errResult := lookupSession(ctx, registry)
		if errResult != nil {
			return errResult
		}

		return router.OKResult(ToTranscriptResponse(session.ID, session.Sequencer.Snapshot()), "Demo transcript retrieved successfully")
	}
}

func restartSessionHandler(registry *Registry, logger *log.Logger) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		session, errResult := lookupSession(ctx, registry)
		if errResult != nil {
			return errResult
		}

		if err := startPlayback(session, logger); err != nil {
			return router.NotFoundResult("Demo session not found")
		}

		return router.AcceptedResult(SessionResponse{SessionID: session.ID}, "Demo restarted")
	}
}

func sendMessageHandler(registry *Registry, logger *log.Logger) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		session, errResult := lookupSession(ctx, registry)
		if errResult != nil {
			return errResult
		}

		var req SendMessageRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			router.GetLogger(ctx).Error("Failed to bind request", "error", err)
			return router.BadRequestResult("Invalid request body", nil)
		}

		if strings.TrimSpace(req.Query) == "" {
			return router.OKResult(ToTranscriptResponse(session.ID, session.Sequencer.Snapshot()), "Empty query ignored")
		}

		go func() {
			if err := session.Sequencer.Send(session.Context(), req.Query); err != nil && !isExpectedStop(err) {
				logger.Error("Demo reply failed", "session_id", session.ID, "error", err)
			}
		}()

		return router.AcceptedResult(SessionResponse{SessionID: session.ID}, "Message accepted")
	}
}

// streamTranscriptHandler pushes the whole transcript after every change until
// the client goes away or the session ends.
func streamTranscriptHandler(registry *Registry, logger *log.Logger) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		session, err := registry.Get(ctx.Param("id"))
		if err != nil {
			ctx.JSON(http.StatusNotFound, router.NotFoundResult("Demo session not found").ToJSON())
			return
		}

		// The server-wide write timeout would otherwise cut the stream.
		if err := http.NewResponseController(ctx.Writer).SetWriteDeadline(time.Time{}); err != nil {
			router.GetLogger(ctx).Debug("Could not clear write deadline for stream", "error", err)
		}

		updates, unsubscribe := session.Sequencer.Subscribe()
		defer unsubscribe()

		stream := sse.NewWriter(ctx.Writer)
		defer stream.Close()
		stream.Start()

		send := func() error {
			return stream.WriteEvent(transcriptEvent, ToTranscriptResponse(session.ID, session.Sequencer.Snapshot()))
		}

		if err := send(); err != nil {
			return
		}

		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-ctx.Request.Context().Done():
				return
			case <-session.Context().Done():
				return
			case <-updates:
				if err := send(); err != nil {
					logger.Debug("Demo stream write failed", "session_id", session.ID, "error", err)
					return
				}
			case <-keepAlive.C:
				if _, err := registry.Get(session.ID); err != nil {
					return
				}
				if err := stream.WriteComment("keep-alive"); err != nil {
					return
				}
			}
		}
	}
}

func getExampleQueriesHandler() router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.OKResult(ExampleQueries(), "Example queries retrieved successfully")
	}
}

func getContactsHandler() router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.OKResult(Contacts(), "Demo contacts retrieved successfully")
	}
}

func lookupSession(ctx *router.RequestContext, registry *Registry) (*Session, *router.ServiceResult) {
	session, err := registry.Get(ctx.Param("id"))
	if err != nil {
		return nil, router.NotFoundResult("Demo session not found")
	}
	return session, nil
}

// startPlayback resets the transcript before returning, so any message posted
// after the response lands in the new run. The script itself plays in the background.
func startPlayback(session *Session, logger *log.Logger) error {
	gen, err := session.Sequencer.Reset(session.Context())
	if err != nil {
		return err
	}

	go func() {
		if err := session.Sequencer.Play(gen); err != nil && !isExpectedStop(err) {
			logger.Error("Demo playback failed", "session_id", session.ID, "error", err)
		}
	}()
	return nil
}

func isExpectedStop(err error) bool {
	return errors.Is(err, ErrSuperseded) || errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled)
}
