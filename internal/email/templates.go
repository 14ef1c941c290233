package email

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	"strings"
	ttemplate "text/template"
	"time"
)

// ─── Datos de template ───

// ReservationData son las variables de los emails de reserva.
type ReservationData struct {
	Firstname   string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	MeetingType string
	ProjectType string
	Budget      string
	Message     string
}

// ContactReplyData son las variables del email de respuesta a un contacto.
type ContactReplyData struct {
	Name            string
	Subject         string
	OriginalMessage string
	ReplyText       string
	AdminName       string
}

// TestData son las variables del email de prueba.
type TestData struct {
	Provider  string
	Timestamp string
}

// ─── Templates ───

const baseStyles = `body{font-family:'Helvetica Neue',Helvetica,Arial,sans-serif;background:#f4f4f7;color:#333;margin:0;padding:0}
.container{max-width:600px;margin:0 auto;background:#fff;border-radius:12px;overflow:hidden}
.header{background:#1a1a2e;padding:32px;text-align:center;color:#fff}
.content{padding:32px;line-height:1.7}
.card{background:#f8f9ff;border-left:4px solid #667eea;padding:16px 20px;margin:20px 0}
.footer{padding:20px;text-align:center;font-size:12px;color:#8b8b9a}`

const layoutOpen = `<!doctype html><html><head><meta charset="utf-8"><style>` + baseStyles + `</style></head>
<body><div class="container"><div class="header"><h1>LE SAGE DEV</h1></div><div class="content">`

const layoutClose = `</div><div class="footer">LE SAGE DEV · ce message a été envoyé automatiquement</div></div></body></html>`

type tmplSet struct {
	subject *ttemplate.Template
	html    *htemplate.Template
	text    *ttemplate.Template
}

func mustSet(name, subject, html, text string) tmplSet {
	return tmplSet{
		subject: ttemplate.Must(ttemplate.New(name + "_subject").Funcs(textFuncs).Parse(subject)),
		html:    htemplate.Must(htemplate.New(name + "_html").Funcs(htmlFuncs).Parse(layoutOpen + html + layoutClose)),
		text:    ttemplate.Must(ttemplate.New(name + "_text").Funcs(textFuncs).Parse(text)),
	}
}

var (
	textFuncs = ttemplate.FuncMap{"humanDate": humanDate}
	htmlFuncs = htemplate.FuncMap{"humanDate": humanDate}
)

var templates = map[string]tmplSet{
	TypeReservationCreated: mustSet(TypeReservationCreated,
		`Votre rendez-vous du {{humanDate .Date}} est enregistré`,
		`<p>Bonjour {{.Firstname}},</p>
<p>Votre demande de rendez-vous a bien été enregistrée. Nous la confirmerons très vite.</p>
<div class="card"><strong>Date :</strong> {{humanDate .Date}} à {{.Time}}<br>
<strong>Format :</strong> {{.MeetingType}}{{if .ProjectType}}<br><strong>Projet :</strong> {{.ProjectType}}{{end}}{{if .Budget}}<br><strong>Budget :</strong> {{.Budget}}{{end}}</div>`,
		`Bonjour {{.Firstname}},

Votre demande de rendez-vous a bien été enregistrée.
Date : {{humanDate .Date}} à {{.Time}}
Format : {{.MeetingType}}
`),

	TypeReservationConfirmed: mustSet(TypeReservationConfirmed,
		`Rendez-vous confirmé : {{humanDate .Date}} à {{.Time}}`,
		`<p>Bonjour {{.Firstname}},</p>
<p>Bonne nouvelle : votre rendez-vous est confirmé.</p>
<div class="card"><strong>Date :</strong> {{humanDate .Date}} à {{.Time}}<br><strong>Format :</strong> {{.MeetingType}}</div>`,
		`Bonjour {{.Firstname}},

Votre rendez-vous est confirmé : {{humanDate .Date}} à {{.Time}} ({{.MeetingType}}).
`),

	TypeReservationCancelled: mustSet(TypeReservationCancelled,
		`Rendez-vous du {{humanDate .Date}} annulé`,
		`<p>Bonjour {{.Firstname}},</p>
<p>Votre rendez-vous du {{humanDate .Date}} à {{.Time}} a été annulé.</p>
<p>Vous pouvez réserver un nouveau créneau à tout moment.</p>`,
		`Bonjour {{.Firstname}},

Votre rendez-vous du {{humanDate .Date}} à {{.Time}} a été annulé.
`),

	TypeContactReply: mustSet(TypeContactReply,
		`Re: {{.Subject}}`,
		`<p>Bonjour {{.Name}},</p>
<p>{{.ReplyText}}</p>
<div class="card"><strong>Votre message :</strong><br>{{.OriginalMessage}}</div>
{{if .AdminName}}<p>{{.AdminName}}</p>{{end}}`,
		`Bonjour {{.Name}},

{{.ReplyText}}

--- Votre message ---
{{.OriginalMessage}}
{{if .AdminName}}
{{.AdminName}}{{end}}
`),

	TypeTest: mustSet(TypeTest,
		`Test de configuration email ({{.Provider}})`,
		`<p>La configuration email fonctionne.</p><div class="card"><strong>Provider :</strong> {{.Provider}}<br><strong>Date :</strong> {{.Timestamp}}</div>`,
		`La configuration email fonctionne.
Provider : {{.Provider}}
Date : {{.Timestamp}}
`),
}

// Render ejecuta el template de emailType con data.
func Render(emailType string, data any) (subject, html, text string, err error) {
	set, ok := templates[emailType]
	if !ok {
		return "", "", "", fmt.Errorf("email: no template for %q", emailType)
	}
	var sb, hb, tb bytes.Buffer
	if err := set.subject.Execute(&sb, data); err != nil {
		return "", "", "", fmt.Errorf("email: render subject %s: %w", emailType, err)
	}
	if err := set.html.Execute(&hb, data); err != nil {
		return "", "", "", fmt.Errorf("email: render html %s: %w", emailType, err)
	}
	if err := set.text.Execute(&tb, data); err != nil {
		return "", "", "", fmt.Errorf("email: render text %s: %w", emailType, err)
	}
	return strings.TrimSpace(sb.String()), hb.String(), tb.String(), nil
}

// TestMessage arma el email de prueba que usa `consultctl email test`.
func TestMessage(to, provider string, now time.Time) (Message, error) {
	subject, html, text, err := Render(TypeTest, TestData{Provider: provider, Timestamp: now.Format(time.RFC1123)})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html, Text: text, EmailType: TypeTest}, nil
}

var (
	frDays   = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet",
		"août", "septembre", "octobre", "novembre", "décembre"}
)

// humanDate convierte "2026-03-05" en "jeudi 5 mars 2026". Si no parsea devuelve el original.
func humanDate(s string) string {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s %d %s %d", frDays[d.Weekday()], d.Day(), frMonths[d.Month()-1], d.Year())
}
