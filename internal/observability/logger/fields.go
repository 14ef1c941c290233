package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field es un alias de zap.Field para no importar zap en cada caller.
type Field = zap.Field

// =================================================================================
// CAMPOS - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// Duration crea un campo para la duración de una operación.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// =================================================================================
// CAMPOS - NEGOCIO
// =================================================================================

// UserID crea un campo para el ID del usuario autenticado.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Role crea un campo para el rol del actor.
func Role(v string) zap.Field {
	return zap.String("role", v)
}

// Email crea un campo para una dirección de email (usar con cuidado en prod).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// ReservationID crea un campo para el ID de una reserva.
func ReservationID(v string) zap.Field {
	return zap.String("reservation_id", v)
}

// MessageID crea un campo para el ID de un mensaje de contacto.
func MessageID(v string) zap.Field {
	return zap.String("message_id", v)
}

// EmailType crea un campo para el tipo de email (reservation_created, contact_reply...).
func EmailType(v string) zap.Field {
	return zap.String("email_type", v)
}

// LogID crea un campo para el ID de la fila en email_logs.
func LogID(v string) zap.Field {
	return zap.String("log_id", v)
}

// Provider crea un campo para el proveedor de email.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// TaskID crea un campo para el ID de una tarea de la cola.
func TaskID(v string) zap.Field {
	return zap.String("task_id", v)
}

// Attempt crea un campo para el número de intento.
func Attempt(v int) zap.Field {
	return zap.Int("attempt", v)
}

// =================================================================================
// CAMPOS - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, repository, worker).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// CAMPOS - GENÉRICOS
// =================================================================================

func Count(v int) zap.Field { return zap.Int("count", v) }
func ID(v string) zap.Field { return zap.String("id", v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
