package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServeFailsWhenPortIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	quit := make(chan os.Signal)

	assert.Equal(t, 1, serve(srv, quit, discardLogger()))
}

func TestServeReportsSignal(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	assert.Equal(t, 128+int(syscall.SIGTERM), serve(srv, quit, discardLogger()))
}
