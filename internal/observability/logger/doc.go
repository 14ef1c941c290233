// Package logger expone un logger Zap único con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:         cfg.App.Env, // "development" | "production"
//	    Level:       cfg.Log.Level,
//	    ServiceName: "consultdesk",
//	})
//	defer logger.Sync()
//
// En controllers, services y workers:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Reservations.Create"))
//	log.Info("reservation created", logger.ReservationID(id))
//
// Sin contexto (arranque, CLI) se usa el singleton:
//
//	logger.L().Info("server listening", logger.String("addr", addr))
package logger
