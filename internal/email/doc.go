// Package email implementa el envío transaccional de emails.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│              Services HTTP (reservas, contacto)                 │
//	└───────────────────────────┬─────────────────────────────────────┘
//	                            │ Notifier.ReservationCreated(...)
//	                            ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                        Notifier                                 │
//	│  Renderiza templates, consulta el Gate y encola                 │
//	└───────────────────────────┬─────────────────────────────────────┘
//	                            │ Queue.Submit(msg)
//	                            ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Queue                                   │
//	│  Canal acotado + workers, Limiter.WithinLimit, retry/backoff    │
//	└───────────────────────────┬─────────────────────────────────────┘
//	                            │ Client.Send(ctx, msg)
//	                            ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Client                                  │
//	│  preview, test recipient, email_logs pending → sent/failed      │
//	└───────────────────────────┬─────────────────────────────────────┘
//	                            │ Transport.Send(ctx, env)
//	                            ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│           SMTPTransport (go-mail) | ResendTransport             │
//	└─────────────────────────────────────────────────────────────────┘
//
// El Transport se construye una sola vez en main (NewTransport) y se inyecta
// en el Client. No hay estado global en el paquete.
package email
