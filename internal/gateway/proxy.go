package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// newAPIProxy forwards requests unchanged to the llama-server at upstream.
// Streaming responses are flushed as they arrive.
func newAPIProxy(upstream *url.URL, log zerolog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = upstream.Host
	}
	proxy.FlushInterval = -1
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		upstreamErrorsTotal.Inc()
		ev := log.Error().Str("event", "proxy_error").Str("path", r.URL.Path).Err(err)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			ev = ev.Str("request_id", rid)
		}
		ev.Msg("llama-server request failed")
		if r.Context().Err() != nil {
			// client went away; nothing useful to send
			return
		}
		writeJSONError(w, http.StatusBadGateway, "llama-server unavailable")
	}
	return proxy
}
