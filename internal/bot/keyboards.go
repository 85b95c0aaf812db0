package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Menu labels double as commands: the reply keyboard sends them as text
const (
	labelBalance  = "💳 Баланс"
	labelPayments = "💯 Платежі"
	labelPay      = "💰 Оплата"
	labelCabinet  = "👤 Кабінет"
	labelSupport  = "📞 Підтримка"
	labelBack     = "↩️ Повернутись до головного меню"
	labelPhone    = "📞 Надіслати номер телефону"
)

const callbackRequisites = "show_requisites_handler"

var menuLabels = map[string]bool{
	labelBalance:  true,
	labelPayments: true,
	labelPay:      true,
	labelCabinet:  true,
	labelSupport:  true,
}

const (
	textAskPhone = "Будь ласка, надішліть номер телефону, пов'язаний з вашим договором."
	textOwnPhone = "Будь ласка, надішліть власний номер телефону кнопкою нижче."
	textFound    = "<b>Ваш номер телефону знайдено!</b>\nЩо ви хотіли б зробити?"
	textNotFound = "Ваш номер телефону не знайдено. Спробуйте ще раз або зв'яжіться з підтримкою."
	textError    = "Сталася помилка. Спробуйте пізніше."
	textChoose   = "Оберіть дію з меню нижче."

	textUnsupported = "На жаль, я не підтримую цей тип повідомлень. " +
		"Будь ласка, скористайтеся текстовими повідомленнями."

	textNoServices = "<b>Не має активних послуг</b>. \n Будь ласка, зверніться до підтримки."
	textNoPayments = "Платежі не знайдено. Будь ласка, зверніться до підтримки."

	textPay = "*💰 Оберіть зручний спосіб оплати:*"

	textRequisites = "<b>Платіжна інформація:</b>\n\n" +
		"Рекомендована сума для оплати: [Абонплата] грн/міс\n" +
		"Отримувач: ТОВ \"Хеппілінк Україна\"\n" +
		"IBAN: UA113052990000026002035033913\n" +
		"РНОКПП: 45589308\n" +
		"В АТ КБ: «ПриватБанк»\n" +
		"Призначення платежу: Оплата за інтернет, особовий рахунок № [Ваш рахунок]"

	textSupportPrompt = "Введіть, будь ласка, текст повідомлення для підтримки " +
		"або поверніться до головного меню:"
	textSupportReminder = "Ви натиснули кнопку меню, проте ми очікуємо текст повідомлення.\n" +
		"Будь ласка, введіть текст для підтримки або поверніться до головного меню:"
	textBackToMenu    = "Ви повернулися до головного меню."
	textNoRecord      = "Не вдалося знайти ваш запис у базі."
	textTicketFailed  = "Виникла помилка при відправці заявки. Спробуйте пізніше."
	textTicketCreated = "<b>Повідомлення отримано!</b>\nОчікуйте, ми зв’яжемося з вами."
)

func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(labelPhone)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labelBalance),
			tgbotapi.NewKeyboardButton(labelPayments),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labelPay),
			tgbotapi.NewKeyboardButton(labelCabinet),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labelSupport),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(labelBack)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func startKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/start")),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) payMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💳 EasyPay", b.opts.EasyPayURL),
			tgbotapi.NewInlineKeyboardButtonURL("🏦 Privat24", b.opts.Privat24URL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Реквізити", callbackRequisites),
		),
	)
}
