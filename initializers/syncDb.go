package initializers

import (
	"errors"

	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
		&models.NotificationCounter{},
		&models.PaymentType{},
		&models.DeliveryType{},
		&models.Settings{},
	)
}

// Seed inserts the lookup rows checkout branches on and the settings row.
// Existing rows are left untouched so admin edits survive restarts.
func Seed(db *gorm.DB) error {
	paymentTypes := []models.PaymentType{
		{Name: models.PaymentCashOnDelivery, Label: "Cash on delivery", Enabled: true},
		{Name: models.PaymentBankTransfer, Label: "Bank transfer", Enabled: true},
		{Name: models.PaymentCard, Label: "Card", Enabled: true},
		{Name: models.PaymentPayPal, Label: "PayPal", Enabled: true},
	}
	for i := range paymentTypes {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&paymentTypes[i]).Error; err != nil {
			return err
		}
	}

	deliveryTypes := []models.DeliveryType{
		{Name: "standard", Label: "Standard delivery", Enabled: true},
		{Name: "pickup", Label: "Store pickup", Enabled: true},
	}
	for i := range deliveryTypes {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&deliveryTypes[i]).Error; err != nil {
			return err
		}
	}

	var settings models.Settings
	err := db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings()
		return db.Create(&settings).Error
	}
	return err
}

func SyncDatabase() error {
	if err := Migrate(DB); err != nil {
		return err
	}
	if err := Seed(DB); err != nil {
		return err
	}
	logger.Info("database synced successfully")
	return nil
}
