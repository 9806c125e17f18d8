// Package logger wraps zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level changes,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Long-running services take the logger from their context; controllers that
// run on timer goroutines capture a named logger once at construction.
package logger
