package main

import (
	"log/slog"
	"net/http"
	"os"
	"syscall"
)

// serve runs srv until a signal arrives on quit or the server fails, and
// returns the process exit code: 128+signal for a requested stop, 1 when
// ListenAndServe failed (port taken, bad address). The caller shuts the
// server down afterwards.
func serve(srv *http.Server, quit <-chan os.Signal, logger *slog.Logger) int {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case value := <-quit:
		if sig, ok := value.(syscall.Signal); ok {
			return 128 + int(sig)
		}
		return 1
	case err := <-serveErr:
		logger.Error("server error", slog.Any("error", err))
		return 1
	}
}
