package service

import "fmt"

const (
	setupEmailSubject = "Set your Metrix HardLine password"
	resetEmailSubject = "Metrix HardLine - Reset Your Password"
)

// setupEmailHTML тело письма после успешной оплаты
func setupEmailHTML(link string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif">
  <h2>Metrix HardLine</h2>
  <p>Your payment was successful.</p>
  <p>Click below to create your password:</p>
  <a href="%s"
     style="display:inline-block;padding:12px 16px;background:#401d65;color:#fff;border-radius:8px;text-decoration:none;font-weight:bold">
     Set Your Password
  </a>
  <p style="font-size:12px;color:#666">
    If you did not purchase Metrix HardLine, ignore this email.
  </p>
</div>`, link)
}

// resetEmailHTML тело письма повторной отправки ссылки установки пароля
func resetEmailHTML(link string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;line-height:1.5">
  <h2>Metrix HardLine</h2>
  <p>Here is your password setup link:</p>
  <p>
    <a href="%s" style="display:inline-block;padding:12px 16px;background:#401d65;color:#fff;border-radius:8px;text-decoration:none;font-weight:700">
      Set Password
    </a>
  </p>
  <p style="color:#666;font-size:12px">If you did not request this, ignore this email.</p>
</div>`, link)
}
