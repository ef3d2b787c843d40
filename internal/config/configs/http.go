package configs

import "time"

// HTTP defines configuration for the API server. Port selects the TCP
// port to bind. ShutdownTimeout bounds how long in-flight requests get to
// finish once a stop signal arrives; event streams are closed right away.
// EventBuffer sizes the per-client queue of the change event stream.
type HTTP struct {
	// Port is the TCP port the HTTP server listens on.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	// EventBuffer is how many change events an SSE client may lag behind
	// before events are dropped for it.
	EventBuffer int `env:"EVENT_BUFFER" envDefault:"32"`
}
