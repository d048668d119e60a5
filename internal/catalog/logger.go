package catalog

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// newRaftLogger builds the hclog.Logger handed to Raft. Raft is chatty, so
// unless a level is configured its output is discarded.
func newRaftLogger(levelName string, output io.Writer) hclog.Logger {
	level := hclog.LevelFromString(levelName)
	if level == hclog.NoLevel || level == hclog.Off || output == nil {
		return hclog.New(&hclog.LoggerOptions{
			Name:   "raft",
			Level:  hclog.Off,
			Output: io.Discard,
		})
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "raft",
		Level:  level,
		Output: output,
	})
}
