// Package migrations embebe las migraciones SQL de PostgreSQL.
package migrations

import "embed"

// FS contiene los pares NNNN_nombre_up.sql / NNNN_nombre_down.sql.
//
//go:embed *.sql
var FS embed.FS

// Dir es la raíz dentro de FS donde viven los archivos.
const Dir = "."
