package models

import (
	"gorm.io/datatypes"
)

type BankDetails struct {
	AccountHolder string `json:"accountHolder"`
	BankName      string `json:"bankName"`
	IBAN          string `json:"iban"`
	SWIFT         string `json:"swift"`
}

// Settings is the single shop-wide configuration row.
type Settings struct {
	ID          uint                            `json:"-" gorm:"primaryKey"`
	ShopName    string                          `json:"shopName"`
	AdminEmail  string                          `json:"adminEmail"`
	Language    string                          `json:"language" gorm:"type:varchar(8);not null;default:en"`
	Currency    string                          `json:"currency" gorm:"type:varchar(8);not null;default:EUR"`
	BankDetails datatypes.JSONType[BankDetails] `json:"bankDetails"`
}

func DefaultSettings() Settings {
	return Settings{ID: 1, ShopName: "Amexan", Language: "en", Currency: "EUR"}
}
