// Package logging provides structured logging for tourguide.
//
// The package wraps Go's log/slog to write JSON lines. Tours are long-lived
// and driven by user input, so the interesting questions after the fact are
// "which tour, which mounted instance, which step": child loggers carry those
// as persistent attributes.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	tourLogger := logger.WithTour("welcome").WithMount(mountID)
//	tourLogger.Debug("step changed", "from", 0, "to", 1)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"step changed","tour_id":"welcome","mount_id":"...","from":0,"to":1}
//
// # Rotation
//
// [NewRotatingLogger] writes through a [RotatingWriter], which rotates the
// file once it exceeds RotationConfig.MaxSizeMB and keeps MaxBackups old
// files, optionally gzip compressed.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package logging
