package cli

import (
	"context"
	"io"
)

// RunWithWriter runs the app with command output sent to w
func RunWithWriter(ctx context.Context, args []string, w io.Writer) error {
	return run(ctx, args, "test", w)
}

var GetIndexConfig = getIndexConfig
