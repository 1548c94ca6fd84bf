package sinks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/logging"
)

// Log writes one structured log line per bucket to the context logger.
type Log struct {
	level zerolog.Level
}

// NewLog creates a log sink emitting at level.
func NewLog(level zerolog.Level) *Log {
	return &Log{level: level}
}

// Handle implements bucketizer.Handler.
func (l *Log) Handle(ctx context.Context, b *bucketizer.Bucket) error {
	members := make([]string, 0, b.Size())
	for _, m := range b.Members() {
		members = append(members, m.Provider()+"/"+m.ID())
	}
	logging.FromContext(ctx).WithLevel(l.level).
		Int("size", b.Size()).
		Int("links", len(b.Associations())).
		Strs("members", members).
		Msg("Bucket")
	return nil
}
