// Package protolog provides structured protocol logging for the haptic
// router.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (OSC transport, game-session
// wire, orchestrator service). It is separate from operational logging
// (zerolog/slog) — protocol capture provides a complete machine-readable
// event trace for debugging device connectivity and timing issues.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via zerolog
//	logger := protolog.NewZerologAdapter(log.Logger)
//
//	// For production: write to binary file
//	logger, _ := protolog.NewFileLogger("/var/log/hapticd/router.plog")
//
//	// Queryable history (SQLiteLogger.Query)
//	logger, _ := protolog.NewSQLiteLogger("/var/lib/hapticd/router.db")
//
//	// Combine any of the above
//	fileLogger, _ := protolog.NewFileLogger(...)
//	logger := protolog.NewMultiLogger(
//	    protolog.NewZerologAdapter(log.Logger),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: raw OSC datagrams to/from devices and the avatar stream
//     (OSCFrameEvent).
//   - Wire: decoded game-session WebSocket messages (GameMessageEvent).
//   - Service: device lifecycle transitions (DeviceStateEvent) and
//     orchestrator tick-timing warnings (TickWarningEvent).
//
// # File Format
//
// FileLogger writes CBOR-encoded Events with a .plog extension, one per
// record, readable with Reader.
package protolog
