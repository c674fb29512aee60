package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

const (
	// compressMinSize skips compressing small responses such as errors.
	compressMinSize  = 1024
	compressionLevel = 6
)

// CompressionMiddleware gzips responses for clients that accept it.
func CompressionMiddleware(next http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(compressMinSize),
		gzhttp.CompressionLevel(compressionLevel),
		gzhttp.ContentTypes([]string{"application/json"}),
	)
	if err != nil {
		return gzhttp.GzipHandler(next)
	}
	return wrapper(next)
}
