package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/metrics"
	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/utils"
	"go.uber.org/zap"
)

// Confirmer runs the side effects of a completed sale: inventory, buyer
// email, receipt archive and admin notification.
type Confirmer struct {
	inventory     InventoryLedger
	notifications NotificationStore
	users         UserStore
	paymentTypes  PaymentTypeLookup
	deliveryTypes DeliveryTypeLookup
	mailer        utils.Mailer
	receipts      ReceiptStore
	metrics       *metrics.Metrics
}

type ConfirmerDeps struct {
	Inventory     InventoryLedger
	Notifications NotificationStore
	Users         UserStore
	PaymentTypes  PaymentTypeLookup
	DeliveryTypes DeliveryTypeLookup
	Mailer        utils.Mailer
	// Receipts is optional.
	Receipts ReceiptStore
	Metrics  *metrics.Metrics
}

func NewConfirmer(d ConfirmerDeps) *Confirmer {
	return &Confirmer{
		inventory:     d.Inventory,
		notifications: d.Notifications,
		users:         d.Users,
		paymentTypes:  d.PaymentTypes,
		deliveryTypes: d.DeliveryTypes,
		mailer:        d.Mailer,
		receipts:      d.Receipts,
		metrics:       d.Metrics,
	}
}

// DecrementInventory applies every item to the ledger. A missing product is
// reported as ErrProductMissing.
func (c *Confirmer) DecrementInventory(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		err := c.inventory.DecrementAndCheckSoldOut(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, models.ErrProductNotFound) {
			return fmt.Errorf("%w: %s", ErrProductMissing, item.ProductID)
		}
		if err != nil {
			return fmt.Errorf("decrement product %s: %w", item.ProductID, err)
		}
	}
	return nil
}

// SendBuyerConfirmation mails the order summary in the shop's language and
// archives the rendered receipt when an archive is configured.
func (c *Confirmer) SendBuyerConfirmation(ctx context.Context, user *models.User, order *models.Order, items []models.OrderItem,
	settings models.Settings, paymentType *models.PaymentType, deliveryType *models.DeliveryType) error {
	data, err := c.confirmationData(ctx, user, order, items, paymentType, deliveryType, settings)
	if err != nil {
		return err
	}

	if c.receipts != nil {
		if _, html, err := utils.Render(utils.TemplateOrderConfirmation, settings.Language, data); err == nil {
			if _, err := c.receipts.Store(ctx, order.ID, html); err != nil {
				c.sideEffectFailed("receipt", order.ID, err)
			}
		}
	}

	return c.mailer.Send(ctx, utils.Message{
		Template: utils.TemplateOrderConfirmation,
		To:       user.Email,
		Locale:   settings.Language,
		Data:     data,
	})
}

func (c *Confirmer) confirmationData(ctx context.Context, user *models.User, order *models.Order, items []models.OrderItem,
	paymentType *models.PaymentType, deliveryType *models.DeliveryType, settings models.Settings) (utils.OrderConfirmationData, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := c.inventory.FindMany(ctx, ids)
	if err != nil {
		return utils.OrderConfirmationData{}, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	data := utils.OrderConfirmationData{
		Name:         user.FullName(),
		OrderID:      order.ID,
		Total:        order.Total.StringFixed(2),
		Currency:     order.Currency,
		PaymentType:  paymentType.Label,
		DeliveryType: deliveryType.Label,
	}
	for _, item := range items {
		p := byID[item.ProductID]
		data.Items = append(data.Items, utils.LineItem{
			Name:     p.Name,
			Quantity: item.Quantity,
			Price:    p.Price.StringFixed(2),
		})
	}
	if paymentType.Name == models.PaymentBankTransfer {
		bank := settings.BankDetails.Data()
		data.BankDetails = &bank
	}
	return data, nil
}

// NotifyAdmin emails the admin when adminEmail is set and always records a
// notification for the admin account.
func (c *Confirmer) NotifyAdmin(ctx context.Context, admin *models.User, adminEmail string, order *models.Order,
	buyer *models.User, settings models.Settings) error {
	if adminEmail != "" {
		err := c.mailer.Send(ctx, utils.Message{
			Template: utils.TemplateAdminNewOrder,
			To:       adminEmail,
			Locale:   settings.Language,
			Data: utils.AdminNewOrderData{
				ShopName:   settings.ShopName,
				OrderID:    order.ID,
				BuyerName:  buyer.FullName(),
				BuyerEmail: buyer.Email,
				Total:      order.Total.StringFixed(2),
				Currency:   order.Currency,
			},
		})
		if err != nil {
			c.sideEffectFailed("admin_email", order.ID, err)
		}
	}

	message := fmt.Sprintf("New order %s from %s (%s %s)", order.ID, buyer.Email, order.Total.StringFixed(2), order.Currency)
	orderID := order.ID
	return c.notifications.Append(ctx, admin.ID, message, &orderID)
}

// Deliver sends the buyer confirmation and the admin notification. Failures
// are logged and counted, never returned: a confirmed sale stays confirmed.
func (c *Confirmer) Deliver(ctx context.Context, buyer *models.User, order *models.Order, settings models.Settings) {
	ctx, span := tracer.Start(ctx, "confirm.deliver")
	defer span.End()

	paymentType, err := c.paymentTypes.FindByID(ctx, order.PaymentTypeID)
	if err != nil {
		c.sideEffectFailed("payment_type", order.ID, err)
		return
	}
	deliveryType, err := c.deliveryTypes.FindByID(ctx, order.DeliveryTypeID)
	if err != nil {
		c.sideEffectFailed("delivery_type", order.ID, err)
		return
	}

	if err := c.SendBuyerConfirmation(ctx, buyer, order, order.OrderItems, settings, paymentType, deliveryType); err != nil {
		c.sideEffectFailed("buyer_email", order.ID, err)
	}

	admin, err := c.users.FindAdmin(ctx)
	if errors.Is(err, models.ErrUserNotFound) {
		logger.Warn("no admin account, skipping order notification", zap.String("order_id", order.ID))
		return
	}
	if err != nil {
		c.sideEffectFailed("admin_lookup", order.ID, err)
		return
	}

	adminEmail := settings.AdminEmail
	if adminEmail == "" {
		adminEmail = admin.Email
	}
	if err := c.NotifyAdmin(ctx, admin, adminEmail, order, buyer, settings); err != nil {
		c.sideEffectFailed("admin_notification", order.ID, err)
	}
}

func (c *Confirmer) sideEffectFailed(effect, orderID string, err error) {
	logger.Error("confirmation side effect failed",
		zap.String("effect", effect),
		zap.String("order_id", orderID),
		zap.Error(err))
	if c.metrics != nil {
		c.metrics.SideEffectFails.WithLabelValues(effect).Inc()
	}
}
