// +build logless

package logger

// Log is a no-op stand-in for the zerolog-backed logger, swapped in by the
// logless build tag for size-constrained firmware builds. Mirrors the
// chainable subset of zerolog.Event actually used across the module.
var Log = emptyLogger{}

type emptyLogger struct{}

func (l emptyLogger) Debug() emptyEvent   { return emptyEvent{} }
func (l emptyLogger) Info() emptyEvent    { return emptyEvent{} }
func (l emptyLogger) Warn() emptyEvent    { return emptyEvent{} }
func (l emptyLogger) Error() emptyEvent   { return emptyEvent{} }
func (l emptyLogger) Fatal() emptyEvent   { return emptyEvent{} }

type emptyEvent struct{}

func (e emptyEvent) Msg(string) {}
func (e emptyEvent) Msgf(string, ...any) {}
func (e emptyEvent) Err(error) emptyEvent { return e }
func (e emptyEvent) Str(string, string) emptyEvent { return e }
func (e emptyEvent) Int(string, int) emptyEvent { return e }
func (e emptyEvent) Uint8(string, uint8) emptyEvent { return e }
func (e emptyEvent) Float32(string, float32) emptyEvent { return e }
func (e emptyEvent) Bool(string, bool) emptyEvent { return e }
