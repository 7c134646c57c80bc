package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer sends the transactional notifications around an accreditation.
// All sends are best-effort: callers log failures and move on.
type Mailer interface {
	SendSubmissionReceived(ctx context.Context, to, name string, cc []string, accType string) error
	SendApproval(ctx context.Context, to, name string, cc []string) error
	SendRefusal(ctx context.Context, to, name, reason string, cc []string) error
}

type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer builds a Mailer backed by a plain SMTP dialer.
func NewSMTPMailer(host, port, username, password, from string) Mailer {
	p, _ := strconv.Atoi(port)
	return &smtpMailer{
		host:     host,
		port:     p,
		username: username,
		password: password,
		from:     from,
	}
}

// FilterCC drops empty or whitespace-only addresses from a CC list.
func FilterCC(addrs []string) []string {
	var out []string
	for _, a := range addrs {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

func (m *smtpMailer) send(to string, cc []string, subject, htmlBody string) error {
	if m.host == "" {
		return fmt.Errorf("smtp host not configured, email to %s skipped", to)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	if cc = FilterCC(cc); len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func footer() string {
	return fmt.Sprintf(`<p style="margin-top:30px;font-size:12px;color:#666;">
Ceci est un message automatique, merci de ne pas y répondre directement.<br>
© %d Stratygo. Tous droits réservés.</p>`, time.Now().Year())
}

func (m *smtpMailer) SendSubmissionReceived(ctx context.Context, to, name string, cc []string, accType string) error {
	subject := fmt.Sprintf("Demande d'accréditation %s reçue - Stratygo", accType)
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;color:#333;">
<h2>Demande d'accréditation reçue</h2>
<p>Bonjour <strong>%s</strong>,</p>
<p>Nous avons bien reçu votre demande d'accréditation <strong>%s</strong>.
Elle est actuellement en cours d'examen par notre équipe.</p>
<p>Vous recevrez un email dès que votre dossier aura été examiné.</p>
%s</div>`, name, accType, footer())
	return m.send(to, cc, subject, body)
}

func (m *smtpMailer) SendApproval(ctx context.Context, to, name string, cc []string) error {
	subject := "Accréditation Approuvée - Stratygo"
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;color:#333;">
<h2 style="color:#2d8a5b;">Félicitations !</h2>
<p>Bonjour <strong>%s</strong>,</p>
<p>Nous avons le plaisir de vous informer que votre demande d'accréditation a été <strong>validée</strong>.</p>
<p>Votre statut est maintenant : Approuvé.</p>
<p>Si vous avez des questions, n'hésitez pas à contacter votre manager ou le service RH.</p>
%s</div>`, name, footer())
	return m.send(to, cc, subject, body)
}

func (m *smtpMailer) SendRefusal(ctx context.Context, to, name, reason string, cc []string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "Non spécifié"
	}
	subject := "Mise à jour concernant votre accréditation - Stratygo"
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;color:#333;">
<h2 style="color:#dc2626;">Demande Refusée</h2>
<p>Bonjour <strong>%s</strong>,</p>
<p>Nous vous informons que votre demande d'accréditation n'a pas pu être validée pour le moment.</p>
<p><strong>Motif du refus :</strong> %s</p>
<p>Veuillez corriger les éléments indiqués ou contacter votre responsable pour plus d'informations.</p>
%s</div>`, name, reason, footer())
	return m.send(to, cc, subject, body)
}
