package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. A nil closer
// is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to w once the response status is committed and only
// logs a failure, since nothing else can be reported to the peer.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("Failed to write response", slog.Any("error", err), slog.Int("bytes", len(data)))
	}
}
