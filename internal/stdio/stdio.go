// Package stdio is the line-delimited transport binding: one JSON request
// per input line, one JSON response per output line, strictly sequential.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"github.com/CyberHandLLC/archguard/internal/protocol"
)

// maxLineBytes bounds a single request line (large file lists in params).
const maxLineBytes = 4 * 1024 * 1024

// Server reads requests from in and writes responses to out. At most one
// request is in flight at a time: the caller must wait for a response line
// before sending the next request. This is a deliberate simplification for
// process-to-process piping.
type Server struct {
	in         io.Reader
	out        io.Writer
	dispatcher *protocol.Dispatcher
	logger     *zap.Logger
}

// NewServer creates a stdio server over the given streams.
func NewServer(in io.Reader, out io.Writer, d *protocol.Dispatcher, logger *zap.Logger) *Server {
	return &Server{
		in:         in,
		out:        out,
		dispatcher: d,
		logger:     logger,
	}
}

// Run processes lines until EOF or ctx cancellation. A malformed line
// produces one error response line and the loop keeps going; the process
// must never die because of caller input.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	enc := json.NewEncoder(s.out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.dispatcher.Handle(ctx, line)
		if err := enc.Encode(resp); err != nil {
			// Output gone, the caller closed the pipe. Nothing to salvage.
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("stdin read failed", zap.Error(err))
		return err
	}
	return nil
}
