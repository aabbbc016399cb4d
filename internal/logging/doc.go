// Package logging provides structured logging for ratch.
//
// The terminal belongs to the view while ratch runs, so nothing is ever logged
// to it. Logs go to a JSON file in the log directory instead, through a
// size-rotating writer. With logging disabled, callers use [NopLogger].
//
// # Usage
//
//	logger, err := logging.NewLogger(dir, logging.LevelDebug, logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithSession(id)
//	log.Info("dispatched", "generation", 3)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"dispatched","session_id":"1f0c...","generation":3}
//
// # Rotation
//
// When ratch.log would grow past MaxSizeMB it is renamed to ratch.log.1,
// older backups shift up, and backups beyond MaxBackups are removed. With
// Compress set, backups are gzipped in the background.
//
// # Thread Safety
//
// [Logger] and [RotatingWriter] are safe for concurrent use; executor workers
// log from their own goroutines.
package logging
