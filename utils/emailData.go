package utils

import "github.com/Kariqs/amexan-checkout/models"

type VerifyEmailData struct {
	Name            string
	VerificationURL string
	LogoURL         string
}

type LineItem struct {
	Name     string
	Quantity int
	Price    string
}

type OrderConfirmationData struct {
	Name         string
	OrderID      string
	Items        []LineItem
	Total        string
	Currency     string
	PaymentType  string
	DeliveryType string
	// BankDetails is only set for bank transfer orders.
	BankDetails *models.BankDetails
}

type AdminNewOrderData struct {
	ShopName   string
	OrderID    string
	BuyerName  string
	BuyerEmail string
	Total      string
	Currency   string
}
