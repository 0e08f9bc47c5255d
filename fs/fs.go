package appfs

import "embed"

// FS holds the SQL migrations, e-mail templates and static assets shipped with the binary.
//
//go:embed migrations/*.sql all:templates assets
var FS embed.FS
