package configs

import "time"

// Scheduler configures the background publisher. When Enabled, due
// campaigns are published once at startup and then every PublishInterval.
// Publishing is a no-op on days that are not broadcast days, so a short
// interval only costs a read of the campaign list.
type Scheduler struct {
	Enabled         bool          `env:"ENABLED" envDefault:"true"`
	PublishInterval time.Duration `env:"PUBLISH_INTERVAL" envDefault:"1m"`
}
