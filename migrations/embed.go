// Package migrations holds the versioned SQL schema, one directory per
// database driver.
package migrations

import "embed"

// FS contains postgres/*.sql and mysql/*.sql
//
//go:embed postgres/*.sql mysql/*.sql
var FS embed.FS
