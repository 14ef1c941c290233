// Package pg implementa los repositorios de internal/domain/repository sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// PoolConfig ajusta el pool. Los ceros dejan los valores de pgxpool.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime string
}

// Store agrupa el pool y expone un repositorio por agregado.
type Store struct{ pool *pgxpool.Pool }

// New abre el pool. El ping inicial no es bloqueante: si la DB no responde se
// loguea y el servicio arranca igual (readyz lo reporta).
func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	log := logger.L().With(logger.Component("store.pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		log.Info("pg pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}
	return &Store{pool: pool}, nil
}

// NewFromPool envuelve un pool existente (CLI, tests de integración).
func NewFromPool(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Pool expone el pool interno (migraciones, métricas).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Users() repository.UserRepository                  { return &userRepo{pool: s.pool} }
func (s *Store) EmailLogs() repository.EmailLogRepository          { return &emailLogRepo{pool: s.pool} }
func (s *Store) Preferences() repository.EmailPreferenceRepository { return &preferenceRepo{pool: s.pool} }
func (s *Store) Reservations() repository.ReservationRepository    { return &reservationRepo{pool: s.pool} }
func (s *Store) Contacts() repository.ContactRepository            { return &contactRepo{pool: s.pool} }
func (s *Store) Categories() repository.CategoryRepository         { return &categoryRepo{pool: s.pool} }
func (s *Store) Activity() repository.ActivityRepository           { return &activityRepo{pool: s.pool} }

// ─── helpers ───

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapErr traduce errores del driver a los sentinels de repository.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	switch pgCode(err) {
	case pgUniqueViolation:
		return repository.ErrConflict
	case pgForeignKeyViolation:
		return repository.ErrInUse
	case pgInvalidTextRepr:
		// uuid mal formado en un parámetro: equivale a "no existe"
		return repository.ErrNotFound
	}
	return err
}

// nullIfEmpty convierte "" en NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
