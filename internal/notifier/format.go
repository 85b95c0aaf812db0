package notifier

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"happylink/internal/models"
)

// ReasonNotFound is shown instead of a symbol for unknown reasons
const ReasonNotFound = "Причина не найдена"

const timestampLayout = "01/02/2006, 15:04:05"

var reasonSymbols = map[string]string{
	"Подключение":             "&#9989;",
	"Подключение оптоволокна": "&#9989;",
	"Ремонт":                  "&#128308;",
	"Заявка ЛК":               "&#128221;",
	"Заявка Сайт/Telegram":    "&#128233;",
	"Повторная активация":     "&#128472;",
	"Временное отключение":    "&#128683;",
	"Расторжение договора":    "&#128465;",
	"Не известно":             "&#10067;",
	"Приостановление услуги в связи с долгом": "&#128276;",
}

// ReasonSymbol maps a ticket reason to its HTML entity
func ReasonSymbol(reason string) string {
	if s, ok := reasonSymbols[reason]; ok {
		return s
	}
	return ReasonNotFound
}

// FormatPhone keeps the digits of phone and drops the two leading country
// code digits, so "+38 (050) 123-45-67" becomes "0501234567".
func FormatPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) <= 2 {
		return ""
	}
	return digits[2:]
}

// QuestionsLink builds the ticket list URL filtered to day
func QuestionsLink(base string, day time.Time) string {
	date := day.Format("02.01.2006")

	q := url.Values{}
	q.Set("agreement", "")
	q.Set("reason", "-1")
	q.Set("type_date", "1")
	q.Set("date1", date)
	q.Set("date2", date)
	q.Set("responsible", "-1")
	q.Set("city", "0")
	q.Set("street", "0")
	q.Set("house", "0")
	q.Set("action", "search")
	q.Set("change_status", "")
	q.Set("myT_length", "50")

	return base + "?" + q.Encode()
}

// FormatTicket renders the staff message in Telegram HTML
func FormatTicket(t *models.Ticket, agreementURL string) string {
	phone := FormatPhone(t.Phone)
	agreementLink := agreementURL + "?agreement=" + url.QueryEscape(t.Agreement)
	comment := strings.ReplaceAll(html.EscapeString(t.Comment), "\n", "\n> ")

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Создана:</b> %s\n", t.Created.Format(timestampLayout))
	fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(t.CreatedEmployee))
	fmt.Fprintf(&b, "<b>Причина:</b> %s %s\n", html.EscapeString(t.Reason), ReasonSymbol(t.Reason))
	fmt.Fprintf(&b, "<b>Договор:</b> <a href='%s'>%s</a>\n", html.EscapeString(agreementLink), html.EscapeString(t.Agreement))
	fmt.Fprintf(&b, "<b>Адрес:</b> %s\n", html.EscapeString(t.Address.Full()))
	fmt.Fprintf(&b, "📞 <a href='tel:%s'>%s</a>\n", phone, phone)
	fmt.Fprintf(&b, "<b>Комментарий:</b> %s\n", comment)
	fmt.Fprintf(&b, "<b>Назначено:</b> 🕒 %s\n", t.DestTime.Format(timestampLayout))
	if t.ResponsibleEmployee != "" {
		fmt.Fprintf(&b, "<b>Исполнитель:</b> %s", html.EscapeString(t.ResponsibleEmployee))
	}
	return b.String()
}
