// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telemetry

import (
	"context"
	"log/slog"

	"github.com/pdiddy/research-assistant/internal/logging"
)

// LogSink writes events as structured log records. Errors log at error
// level and rejections at warn; everything else logs at info.
type LogSink struct {
	// Logger overrides the context logger when set.
	Logger *slog.Logger
}

// Emit logs e.
func (s LogSink) Emit(ctx context.Context, e Event) {
	log := s.Logger
	if log == nil {
		log = logging.FromContext(ctx)
	}

	level := slog.LevelInfo
	switch e.Name {
	case EventAgentError:
		level = slog.LevelError
	case EventValidationRejected:
		level = slog.LevelWarn
	}

	args := make([]any, 0, 2*len(e.Fields))
	for k, v := range e.Fields {
		args = append(args, k, v)
	}
	log.Log(ctx, level, e.Name, args...)
}
