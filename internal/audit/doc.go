// Package audit delivers login and session-validation audit events off the
// request path.
//
// A [Dispatcher] owns one worker goroutine and a bounded queue; it either drops
// or blocks when the queue is full and counts every event that never reached
// its [Sink]. Sinks provided here write to a channel, JSON lines or a
// *slog.Logger.
//
// The package decides nothing about which events exist; the engine does.
package audit
