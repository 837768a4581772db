package httpkit

import (
	"net/http"
	"time"

	"ucrfood/internal/platform/config"
	"ucrfood/internal/platform/net/middleware"
)

// CommonStack is the middleware every versioned API scope gets
// cfg is the CORE_API_ view: CORS_ORIGINS (csv) and TIMEOUT
func CommonStack(cfg config.Conf) []func(http.Handler) http.Handler {
	stack := middleware.Defaults(cfg.MayDuration("TIMEOUT", 30*time.Second))
	if origins := cfg.MayCSV("CORS_ORIGINS", nil); len(origins) > 0 {
		stack = append(stack, middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins, MaxAge: 300}))
	}
	return stack
}
