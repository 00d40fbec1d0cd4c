package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// Default remains 1 MiB for backward compatibility.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// maxUploadBytes bounds multipart image uploads.
var maxUploadBytes int64 = 32 << 20

// SetMaxUploadBytes configures the upload limit; non-positive restores 32 MiB.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 32 << 20
		return
	}
	maxUploadBytes = n
}

// Mutation rate limit. Zero rps disables limiting.
var (
	mutationRPS   float64
	mutationBurst int
)

// SetMutationRateLimit limits POST/DELETE requests to rps per second with
// the given burst. Call before NewMux.
func SetMutationRateLimit(rps float64, burst int) {
	if rps < 0 {
		rps = 0
	}
	if burst <= 0 {
		burst = 1
	}
	mutationRPS = rps
	mutationBurst = burst
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
