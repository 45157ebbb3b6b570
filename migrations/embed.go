// Package migrations embeds the SQL schema migrations so that the server and
// the migrate tool ship them inside the binary.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
