package configs

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Write modes of the ledgers.
const (
	WriteModeCAS      = "cas"
	WriteModeLastWins = "last-write-wins"
)

// Ledger tunes the access, cart, slot and campaign ledgers. Timezone is
// the IANA zone whose calendar decides when the daily quota resets and
// which days are broadcast days. WriteMode chooses between conditional
// writes retried on conflict and unconditional writes; the retry settings
// only matter in the cas mode.
type Ledger struct {
	// Timezone decides the actor's local calendar day and broadcast days.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Bangkok"`
	// WriteMode is cas (compare-and-swap with retry) or last-write-wins,
	// which reproduces unguarded read-modify-write between sessions.
	WriteMode string `env:"WRITE_MODE" envDefault:"cas"`
	// ConflictRetries bounds attempts of one write under contention.
	ConflictRetries uint `env:"CONFLICT_RETRIES" envDefault:"8"`
	// ConflictDelay is the base backoff between attempts.
	ConflictDelay time.Duration `env:"CONFLICT_DELAY" envDefault:"5ms"`
}

// Location loads Timezone. The tzdata package is embedded, so zone names
// resolve even on hosts without a zoneinfo database.
func (c Ledger) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate rejects unknown write modes.
func (c Ledger) Validate() error {
	switch c.WriteMode {
	case WriteModeCAS, WriteModeLastWins:
		return nil
	}
	return fmt.Errorf("unknown ledger write mode %q", c.WriteMode)
}
