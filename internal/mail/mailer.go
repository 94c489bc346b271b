// Package mail sends the two transactional emails the platform needs:
// the password recovery link and the purchase confirmation.
package mail

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer dials SMTP per message. A zero-host mailer is disabled; callers
// treat sends as best-effort either way.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	AppURL   string // frontend base URL used in links
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.Host != "" }

// Item is one purchased course line in the confirmation email.
type Item struct {
	Titulo string
	Preco  float64
}

// SendRecovery mails the password reset link.
func (m *Mailer) SendRecovery(to, nome, token string) error {
	link := fmt.Sprintf("%s/redefinir-senha?token=%s", m.AppURL, token)
	body := fmt.Sprintf(
		"Olá%s,\n\nRecebemos um pedido para redefinir a sua senha. "+
			"O link abaixo vale por 1 hora:\n\n%s\n\n"+
			"Se você não pediu a redefinição, ignore este email.\n",
		saudacao(nome), link)
	return m.send(to, "Recuperação de senha", body)
}

// SendPurchaseConfirmation mails the order summary after an approved payment.
func (m *Mailer) SendPurchaseConfirmation(to, nome string, itens []Item, total float64, pagamentoID string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá%s,\n\nSua compra foi confirmada com sucesso!\n\nResumo do pedido:\n", saudacao(nome))
	for _, it := range itens {
		fmt.Fprintf(&b, "  - %s: R$ %.2f\n", it.Titulo, it.Preco)
	}
	fmt.Fprintf(&b, "\nTotal: R$ %.2f\nID da transação: %s\n\n", total, pagamentoID)
	fmt.Fprintf(&b, "Acesse seus cursos em %s/dashboard\n", m.AppURL)
	return m.send(to, "Confirmação de compra", b.String())
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.Username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}

func saudacao(nome string) string {
	if nome == "" {
		return ""
	}
	return " " + nome
}
