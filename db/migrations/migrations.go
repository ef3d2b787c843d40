package migrations

import "embed"

// FS embeds the SQL migrations for the ledger_entries table. db.Migrate
// reads them through the golang-migrate iofs source.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
