package email

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// SMTPDiag contiene información de diagnóstico de un error de envío.
type SMTPDiag struct {
	Code       string        // auth|tls|dial|timeout|rate_limited|invalid_recipient|rejected|network|http|unknown
	Temporary  bool          // si conviene reintentar
	RetryAfter time.Duration // 0 si no se pudo inferir
}

// DiagnoseSMTP clasifica un error de transporte. La cola sólo reintenta los temporales.
// Los errores HTTP de Resend se clasifican por status code.
func DiagnoseSMTP(err error) SMTPDiag {
	if err == nil {
		return SMTPDiag{Code: "unknown"}
	}

	var te *TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		switch {
		case te.StatusCode == http.StatusTooManyRequests:
			return SMTPDiag{Code: "rate_limited", Temporary: true, RetryAfter: time.Second}
		case te.StatusCode == http.StatusUnauthorized || te.StatusCode == http.StatusForbidden:
			return SMTPDiag{Code: "auth"}
		case te.StatusCode >= 500:
			return SMTPDiag{Code: "http", Temporary: true}
		default:
			return SMTPDiag{Code: "rejected"}
		}
	}

	s := strings.ToLower(err.Error())

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return SMTPDiag{Code: "timeout", Temporary: true}
	}
	if strings.Contains(s, "timeout") {
		return SMTPDiag{Code: "timeout", Temporary: true}
	}

	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connectex:") || // windows
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "dial tcp") {
		return SMTPDiag{Code: "dial", Temporary: true}
	}

	if strings.Contains(s, "x509:") ||
		strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate")) {
		return SMTPDiag{Code: "tls"}
	}

	if strings.Contains(s, "5.7.8") || strings.Contains(s, "535") ||
		strings.Contains(s, "username and password not accepted") ||
		strings.Contains(s, "authentication failed") ||
		strings.Contains(s, "auth") && strings.Contains(s, "failed") {
		return SMTPDiag{Code: "auth"}
	}

	// throttling temporal (4.x.x)
	if strings.Contains(s, "4.7.0") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "try again later") ||
		strings.Contains(s, "temporarily unavailable") ||
		strings.Contains(s, "451") || strings.Contains(s, "421") {
		return SMTPDiag{Code: "rate_limited", Temporary: true, RetryAfter: 30 * time.Second}
	}

	if strings.Contains(s, "5.1.1") || strings.Contains(s, "user unknown") ||
		strings.Contains(s, "mailbox not found") {
		return SMTPDiag{Code: "invalid_recipient"}
	}

	// políticas/DMARC/SPF
	if strings.Contains(s, "5.7.1") ||
		strings.Contains(s, "message rejected") ||
		strings.Contains(s, "policy") ||
		strings.Contains(s, "dmarc") || strings.Contains(s, "spf") {
		return SMTPDiag{Code: "rejected"}
	}

	if errors.As(err, &ne) {
		return SMTPDiag{Code: "network", Temporary: true}
	}
	return SMTPDiag{Code: "unknown"}
}
