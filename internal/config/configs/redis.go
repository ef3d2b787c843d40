package configs

// Redis defines the settings of the redis store driver. Every ledger key
// is stored under Prefix, which lets several deployments share one
// instance. Changes are announced on Channel; every process sharing the
// instance must use the same channel to see each other's writes.
type Redis struct {
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// Prefix namespaces every ledger key.
	Prefix string `env:"PREFIX" envDefault:"landmarket:"`
	// Channel is the pub/sub channel carrying change events.
	Channel string `env:"CHANNEL" envDefault:"landmarket:changes"`
}
