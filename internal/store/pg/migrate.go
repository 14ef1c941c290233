package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Migrate ejecuta los archivos *_up.sql (ascendente) o *_down.sql (descendente)
// de fsys/dir. steps > 0 limita la cantidad. Devuelve cuántos se aplicaron.
// Las migraciones son idempotentes (IF NOT EXISTS) y no se lleva tabla de versiones.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir, action string, steps int) (int, error) {
	var suffix string
	switch strings.ToLower(action) {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		return 0, fmt.Errorf("unknown action %q, use up | down", action)
	}

	files, err := listSQL(fsys, dir, suffix)
	if err != nil {
		return 0, err
	}
	sort.Strings(files)
	if suffix == "_down.sql" {
		reverseInPlace(files)
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	log := logger.From(ctx).With(logger.Component("migrate"))
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", f, err)
		}
		start := time.Now()
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return 0, fmt.Errorf("exec %s: %w", f, err)
		}
		log.Info("migration applied", logger.String("file", path.Base(f)), logger.Duration(time.Since(start)))
	}
	return len(files), nil
}

func listSQL(fsys fs.FS, dir, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, path.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}
