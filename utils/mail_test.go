package utils

import (
	"context"
	"testing"

	"github.com/Kariqs/amexan-checkout/config"
	"github.com/Kariqs/amexan-checkout/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmationWithBankDetails(t *testing.T) {
	data := OrderConfirmationData{
		Name:         "Amina",
		OrderID:      "order-1",
		Items:        []LineItem{{Name: "Shea butter", Quantity: 2, Price: "4.50"}},
		Total:        "9.00",
		Currency:     "EUR",
		PaymentType:  "Bank transfer",
		DeliveryType: "Standard delivery",
		BankDetails:  &models.BankDetails{AccountHolder: "Amexan GmbH", IBAN: "DE89370400440532013000"},
	}

	subject, body, err := Render(TemplateOrderConfirmation, "en", data)
	require.NoError(t, err)
	assert.Equal(t, "Your order confirmation", subject)
	assert.Contains(t, body, "Shea butter")
	assert.Contains(t, body, "DE89370400440532013000")
	assert.Contains(t, body, "9.00 EUR")
}

func TestRenderOrderConfirmationWithoutBankDetails(t *testing.T) {
	_, body, err := Render(TemplateOrderConfirmation, "en", OrderConfirmationData{OrderID: "order-2"})
	require.NoError(t, err)
	assert.NotContains(t, body, "IBAN")
}

func TestRenderUsesLocale(t *testing.T) {
	subject, body, err := Render(TemplateAdminNewOrder, "de", AdminNewOrderData{OrderID: "order-3", ShopName: "Amexan"})
	require.NoError(t, err)
	assert.Equal(t, "Neue Bestellung eingegangen", subject)
	assert.Contains(t, body, "Eine neue Bestellung ist eingegangen")

	subject, _, err = Render(TemplateVerifyEmail, "fr", VerifyEmailData{Name: "Jo"})
	require.NoError(t, err)
	assert.Equal(t, "Account Verification", subject)
}

func TestResolveLocale(t *testing.T) {
	tests := map[string]string{
		"":      "en",
		"en":    "en",
		"de":    "de",
		"de-AT": "de",
		"fr":    "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolveLocale(in), in)
	}
}

func TestSMTPMailerNotConfigured(t *testing.T) {
	err := NewSMTPMailer(config.SMTPConfig{}).Send(context.Background(), Message{Template: TemplateVerifyEmail})
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestBuildMessageHeaders(t *testing.T) {
	raw := string(buildMessage("shop@amexan.store", "buyer@example.com", "Hi", "<p>body</p>"))
	assert.Contains(t, raw, "From: shop@amexan.store\r\n")
	assert.Contains(t, raw, "To: buyer@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.Contains(t, raw, "\r\n\r\n<p>body</p>")
}
