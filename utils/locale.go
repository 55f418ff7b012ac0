package utils

import (
	"golang.org/x/text/language"
)

var (
	supportedLocales = []language.Tag{language.English, language.German}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// ResolveLocale maps any language setting onto a supported locale, falling
// back to English.
func ResolveLocale(lang string) string {
	tag, _ := language.MatchStrings(localeMatcher, lang)
	base, _ := tag.Base()
	return base.String()
}

func Translations(locale string) map[string]string {
	return translations[ResolveLocale(locale)]
}

var translations = map[string]map[string]string{
	"en": {
		"subject.verify_email":       "Account Verification",
		"subject.order_confirmation": "Your order confirmation",
		"subject.admin_new_order":    "New order received",
		"greeting":                   "Hello",
		"verify.body":                "Thank you for your order! Click the button below to verify your account.",
		"verify.button":              "Verify account",
		"order.intro":                "Thank you for shopping with us. Here is a summary of your order",
		"order.product":              "Product",
		"order.quantity":             "Quantity",
		"order.price":                "Price",
		"order.total":                "Total",
		"order.payment":              "Payment",
		"order.delivery":             "Delivery",
		"order.bank":                 "Please transfer the total to the following account",
		"order.reference":            "Reference",
		"admin.intro":                "A new order was placed",
		"admin.buyer":                "Buyer",
	},
	"de": {
		"subject.verify_email":       "Kontobestätigung",
		"subject.order_confirmation": "Ihre Bestellbestätigung",
		"subject.admin_new_order":    "Neue Bestellung eingegangen",
		"greeting":                   "Hallo",
		"verify.body":                "Vielen Dank für Ihre Bestellung! Klicken Sie auf den Button, um Ihr Konto zu bestätigen.",
		"verify.button":              "Konto bestätigen",
		"order.intro":                "Vielen Dank für Ihren Einkauf. Hier ist eine Übersicht Ihrer Bestellung",
		"order.product":              "Produkt",
		"order.quantity":             "Menge",
		"order.price":                "Preis",
		"order.total":                "Gesamt",
		"order.payment":              "Zahlung",
		"order.delivery":             "Lieferung",
		"order.bank":                 "Bitte überweisen Sie den Gesamtbetrag auf folgendes Konto",
		"order.reference":            "Verwendungszweck",
		"admin.intro":                "Eine neue Bestellung ist eingegangen",
		"admin.buyer":                "Käufer",
	},
}
