package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionConfig holds configuration options for response compression
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes to compress (default: 1024)
	MinSize int
	// Level is the gzip level, 1-9 (default: 6)
	Level int
}

// DefaultCompressionConfig returns the compression settings used when none are configured.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024, // 1KB
		Level:   6,    // gzip's own default
	}
}

// NewCompressionMiddleware gzips responses larger than config.MinSize for
// clients that accept it.
func NewCompressionMiddleware(config CompressionConfig) func(http.Handler) http.Handler {
	// Unset or out of range values fall back to the defaults
	d := DefaultCompressionConfig()
	if config.MinSize <= 0 {
		config.MinSize = d.MinSize
	}
	if config.Level < 1 || config.Level > 9 {
		config.Level = d.Level
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
	)
	return func(next http.Handler) http.Handler {
		if err != nil {
			// gzhttp rejected the options, use its stock handler
			return gzhttp.GzipHandler(next)
		}
		return wrapper(next)
	}
}
