// Package profiling wires optional pprof and Pyroscope profiling. Both are
// off unless enabled through the environment.
package profiling

import (
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

const (
	defaultPprofPort       = "6060"
	pprofReadHeaderTimeout = 5 * time.Second
)

// StartPprofServer serves the pprof endpoints on localhost:PPROF_PORT when
// ENABLE_PROFILING=true. It returns immediately.
func StartPprofServer(log logger.Logger) {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}

	// localhost only: profiles expose internals
	addr := "localhost:" + port

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: pprofReadHeaderTimeout,
	}

	go func() {
		log.Info("Starting pprof server", logger.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()
}
