// Package notify sends transactional emails for reservation lifecycle
// events.  Delivery is best-effort: the consumer logs failures and keeps
// going, and no booking operation ever waits on SMTP.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"time"

	"github.com/wadhahbr/room-reservation/internal/queue"
)

// Mailer renders and sends reservation emails over SMTP.  A nil Mailer
// (no SMTP_HOST configured) silently drops every message.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewMailerFromEnv builds a Mailer from SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASS and SMTP_FROM.  Returns nil when SMTP_HOST is unset so
// callers can run without a mail relay.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("notify: SMTP_HOST not set, email delivery disabled")
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	return &Mailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

// subjects per event kind; unknown kinds are dropped.
var subjects = map[string]string{
	queue.KindPending:          "Votre réservation est en attente de validation",
	queue.KindConfirmed:        "Votre réservation est confirmée",
	queue.KindCancelled:        "Votre réservation a été annulée",
	queue.KindExpired:          "Votre réservation a expiré",
	queue.KindPaymentConfirmed: "Confirmation de paiement pour votre réservation",
	queue.KindPaymentCancelled: "Annulation du paiement de votre réservation",
	queue.KindPasswordReset:    "Réinitialisation de votre mot de passe",
}

var intros = map[string]string{
	queue.KindPending:          "Votre demande de réservation a bien été enregistrée. Vous recevrez une confirmation par email une fois votre réservation validée.",
	queue.KindConfirmed:        "Votre réservation a été validée. Nous vous attendons !",
	queue.KindCancelled:        "Votre réservation a été annulée. La salle est de nouveau disponible.",
	queue.KindExpired:          "Votre réservation en attente n'a pas été confirmée à temps et a été annulée automatiquement.",
	queue.KindPaymentConfirmed: "Votre paiement sur place a été confirmé avec succès. Merci pour votre confiance !",
	queue.KindPaymentCancelled: "Le paiement de votre réservation a été annulé, ainsi que la réservation associée.",
}

var bodyTmpl = template.Must(template.New("reservation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <p>Bonjour <strong>{{.ClientName}}</strong>,</p>
    <p>{{.Intro}}</p>
    {{if .RoomName}}
    <div style="background-color: #f8f9fa; padding: 20px; border-left: 4px solid #28a745;">
      <h3>Détails de la réservation</h3>
      <ul>
        <li><strong>Salle :</strong> {{.RoomName}}</li>
        <li><strong>Nombre de personnes :</strong> {{.PartySize}}</li>
        {{if .SlotStart}}<li><strong>Horaire :</strong> {{.SlotStart}} &ndash; {{.SlotEnd}}</li>{{end}}
        <li><strong>Numéro de réservation :</strong> #{{.ReservationID}}</li>
        <li><strong>Mode de paiement :</strong> Sur place</li>
      </ul>
    </div>
    {{end}}
    {{if .ResetToken}}
    <p>Utilisez le code suivant pour réinitialiser votre mot de passe (valable une heure) :</p>
    <p style="font-size: 18px;"><strong>{{.ResetToken}}</strong></p>
    {{end}}
    <p style="color: #666; font-size: 12px; margin-top: 30px;">
      Cet email a été envoyé automatiquement, merci de ne pas y répondre.
    </p>
  </div>
</body>
</html>`))

type bodyData struct {
	ClientName    string
	Intro         string
	RoomName      string
	PartySize     uint32
	SlotStart     string
	SlotEnd       string
	ReservationID uint64
	ResetToken    string
}

// SendEvent renders and sends the email matching ev.Kind.  Events with
// no mapped subject, or with no recipient, are dropped silently.
func (m *Mailer) SendEvent(ev queue.ReservationEvent) error {
	if m == nil || ev.ClientEmail == "" {
		return nil
	}
	subject, ok := subjects[ev.Kind]
	if !ok {
		return nil
	}
	data := bodyData{
		ClientName:    ev.ClientName,
		Intro:         intros[ev.Kind],
		RoomName:      ev.RoomName,
		PartySize:     ev.PartySize,
		SlotStart:     formatLocal(ev.SlotStart),
		SlotEnd:       formatLocal(ev.SlotEnd),
		ReservationID: ev.ReservationID,
		ResetToken:    ev.ResetToken,
	}
	var body bytes.Buffer
	if err := bodyTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return m.send(ev.ClientEmail, subject, body.Bytes())
}

func (m *Mailer) send(to, subject string, htmlBody []byte) error {
	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(htmlBody)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// formatLocal turns an RFC3339 timestamp into a short readable form,
// passing through unparsable input unchanged.
func formatLocal(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006 15:04")
}
