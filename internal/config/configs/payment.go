package configs

// Payment configures the mock payment gateway. The gateway approves every
// charge unless DeclineAll is set, which lets the declined path be tried
// end to end without a payment provider.
type Payment struct {
	// DeclineAll makes every charge fail, for exercising the failure path.
	DeclineAll bool `env:"DECLINE_ALL" envDefault:"false"`
}
