package service

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storefront/internal/domain"
)

const (
	// DefaultWhatsApp is the support number of the contact tab.
	DefaultWhatsApp = "+233556664343"
	// DefaultContactMessage pre-fills the chat when the customer typed nothing.
	DefaultContactMessage = "Hello PlangeX, I need assistance."
)

var quickMessages = []string{
	"Hello, I need help with my order",
	"I have a question about a product",
	"I need support with my account",
	"Can you tell me about shipping?",
}

// QuickMessages are the one-tap messages of the contact tab.
func QuickMessages() []string {
	return append([]string(nil), quickMessages...)
}

// ContactLink is the WhatsApp deep link to phone pre-filled with message.
func ContactLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if strings.TrimSpace(message) == "" {
		message = DefaultContactMessage
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}

var thankYouTemplates = []string{
	"Thank you for your order, {{name}} ✨ May today bring you calm thoughts, good moments, and small wins that make you smile. Something special is on the way just for you 🤍",
	"{{name}}, thank you for ordering 🌸 Wishing you a day filled with ease, positive energy, and little reasons to be happy. We can’t wait to welcome you back again 😊",
	"Order received, {{name}} 💫 May your day feel lighter, brighter, and full of good vibes. Thank you for choosing us, we hope this is the start of many beautiful orders.",
	"Thank you, {{name}} 🤍 Wishing you peace of mind, joyful moments, and a smile that stays with you all day. We’ll be happy to see you again anytime ✨",
	"{{name}}, your order means a lot 🌼 May today surprise you with kindness, progress, and good energy. Looking forward to creating more beautiful things with you again.",
	"Thank you for your order, {{name}} 😊 May your day be productive, peaceful, and filled with reasons to smile. We hope to serve you again very soon 🤍",
	"{{name}}, thanks for choosing us ✨ Sending you warm wishes, positive thoughts, and a gentle reminder that good things are always on the way. Come back anytime 🌸",
	"Order confirmed, {{name}}. May today bring you confidence, happiness, and a calm heart. Thank you for being here, we’d love to see you again.",
	"Thank you, {{name}} 💖 Wishing you a smooth day, good news, and moments that make you smile without trying. Your next visit will always be welcome.",
	"{{name}}, we appreciate your order ✨ May your day feel beautiful, your plans go well, and your smile come easily. Looking forward to your next order 🤍",
}

// ThankYouTemplates is the number of thank-you messages.
func ThankYouTemplates() int { return len(thankYouTemplates) }

// ThankYouMessage renders template index (wrapped into range) for user. The
// name is the username, else the email local part, first letter capitalized.
func ThankYouMessage(user domain.User, index int) string {
	name := strings.TrimSpace(user.Username)
	if name == "" {
		name, _, _ = strings.Cut(strings.TrimSpace(user.Email), "@")
	}
	if name == "" {
		name = "friend"
	}
	first, size := utf8.DecodeRuneInString(name)
	name = cases.Upper(language.Und).String(string(first)) + name[size:]

	n := len(thankYouTemplates)
	index = ((index % n) + n) % n
	return strings.Replace(thankYouTemplates[index], "{{name}}", name, 1)
}
