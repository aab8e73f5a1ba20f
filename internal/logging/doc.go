// Package logging assembles slog loggers with console and JSON handlers,
// standardized field names, and context-derived attributes shared by the
// pipeline stages and the API server.
package logging
