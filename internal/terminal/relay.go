// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// RelayBufferSize is the most bytes taken from the pty per read.
	RelayBufferSize = 1024

	// RelayQueueSize bounds how many chunks wait for the consumer.
	RelayQueueSize = 256
)

// Relay moves pty output from a blocking reader to a channel the UI drains
// without blocking. One goroutine per session reads, decodes and sends.
type Relay struct {
	out  chan string
	quit chan struct{}
	done chan struct{}

	stopOnce sync.Once
	exitCode atomic.Int64
	chunks   atomic.Int64
	bytes    atomic.Int64
}

// RelayStats is a snapshot of relay counters.
type RelayStats struct {
	Chunks int64
	Bytes  int64
}

func startRelay(reader io.Reader, proc process, logger *zap.Logger) *Relay {
	r := &Relay{
		out:  make(chan string, RelayQueueSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	r.exitCode.Store(-1)
	go r.run(reader, proc, logger)
	return r
}

// Output returns the chunk channel. It is never closed; watch Done instead.
func (r *Relay) Output() <-chan string {
	return r.out
}

// Done is closed after the reader ended and the process was reaped.
// Every chunk was sent before Done closes.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// Finished reports whether Done is closed.
func (r *Relay) Finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the shell's exit code once Finished, or -1.
func (r *Relay) ExitCode() int {
	return int(r.exitCode.Load())
}

// Stats returns the number of chunks and bytes relayed so far.
func (r *Relay) Stats() RelayStats {
	return RelayStats{Chunks: r.chunks.Load(), Bytes: r.bytes.Load()}
}

// stop tells the goroutine that nobody will drain Output any more.
func (r *Relay) stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Relay) run(reader io.Reader, proc process, logger *zap.Logger) {
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("terminal relay panic", zap.Any("panic", rec))
		}
	}()

	decoder := unicode.UTF8.NewDecoder()
	buf := make([]byte, RelayBufferSize)

loop:
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			chunk := decodeLossy(decoder.Bytes, buf[:n])
			r.chunks.Add(1)
			r.bytes.Add(int64(n))

			select {
			case r.out <- chunk:
			case <-r.quit:
				break loop
			}
		}
		if err != nil {
			if err != io.EOF {
				logger.Debug("terminal relay read ended", zap.Error(err))
			}
			break
		}
		if n == 0 {
			break
		}
	}

	if proc != nil {
		code := proc.Wait()
		r.exitCode.Store(int64(code))
		logger.Info("shell exited", zap.Int("code", code), zap.Int64("bytes", r.bytes.Load()))
	}
}

// decodeLossy converts bytes to text, replacing invalid sequences with U+FFFD.
// Sequences split across reads are not stitched back together.
func decodeLossy(decode func([]byte) ([]byte, error), b []byte) string {
	out, err := decode(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
