package mailer

import (
	"fmt"
	"strings"

	"github.com/dvelkov/toystore/internal/models"
)

// ShortID is the human-facing order number shown in emails and the
// confirmation view: the first 8 characters of the order id, upper-cased.
func ShortID(orderID string) string {
	if len(orderID) > 8 {
		orderID = orderID[:8]
	}
	return strings.ToUpper(orderID)
}

func orderConfirmationEmail(order *models.Order) (subject, html string) {
	short := ShortID(order.ID)
	subject = fmt.Sprintf("Нарачка #%s — Потврда | Џамбо Играчки", short)

	var rows strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&rows,
			`<tr><td style="padding:8px 0;border-bottom:1px solid #eee;">%s <span style="color:#888;">× %d</span></td>`+
				`<td style="padding:8px 0;border-bottom:1px solid #eee;text-align:right;">%.0f ден</td></tr>`,
			it.Name, it.Quantity, it.Price*float64(it.Quantity))
	}

	html = fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family:sans-serif;background:#f5f5f5;margin:0;padding:24px;">
<div style="max-width:560px;margin:0 auto;background:#fff;border-radius:12px;padding:28px;">
<h1 style="font-size:20px;margin:0 0 8px;">Нарачката е примена!</h1>
<p style="color:#666;margin:0 0 20px;">Ви благодариме, %s. Вашата нарачка #%s е успешно регистрирана.</p>
<table style="width:100%%;border-collapse:collapse;">%s</table>
<p style="margin:16px 0 4px;"><strong>Меѓузбир:</strong> %.0f ден</p>
<p style="margin:0 0 20px;color:#888;">Испорака: по договор</p>
<p style="margin:0 0 4px;"><strong>Адреса за испорака</strong></p>
<p style="margin:0 0 20px;color:#333;">%s<br>%s</p>
<p style="background:#eff6ff;border-radius:8px;padding:12px;color:#1e40af;">Плаќање при достава (COD)</p>
<p style="color:#888;font-size:13px;">Ќе ве контактираме наскоро за потврда на нарачката.</p>
</div></body></html>`,
		order.CustomerName, short, rows.String(), order.Subtotal,
		order.DeliveryAddress, order.DeliveryCity)
	return subject, html
}

func orderShippedEmail(order *models.Order) (subject, html string) {
	short := ShortID(order.ID)
	subject = fmt.Sprintf("Нарачка #%s — Испратена | Џамбо Играчки", short)
	html = fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family:sans-serif;background:#f5f5f5;margin:0;padding:24px;">
<div style="max-width:560px;margin:0 auto;background:#fff;border-radius:12px;padding:28px;">
<h1 style="font-size:20px;margin:0 0 8px;">Вашата нарачка е испратена!</h1>
<p style="color:#666;">Здраво %s, вашата нарачка <strong>#%s</strong> е предадена на курирска служба и е на пат кон %s.</p>
<p style="color:#888;font-size:13px;">Курирот ќе ве контактира пред достава.</p>
</div></body></html>`,
		order.CustomerName, short, order.DeliveryCity)
	return subject, html
}

// InvitationEmail is the staff-invite message sent from the admin panel.
func InvitationEmail(signupURL string) (subject, html string) {
	subject = "Покана за вработен профил | Џамбо Играчки"
	html = fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family:sans-serif;padding:24px;">
<p>Поканети сте да отворите вработен профил во системот на Џамбо Играчки.</p>
<p><a href="%s">Регистрирајте се овде</a></p>
<p style="color:#888;font-size:13px;">Ако не ја очекувавте оваа порака, игнорирајте ја.</p>
</body></html>`, signupURL)
	return subject, html
}
