// Package logging provides a simple leveled logging interface for the
// darkroom build pipeline.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the build
//
// The log level is configured via the LOG_LEVEL environment variable.
package logging
