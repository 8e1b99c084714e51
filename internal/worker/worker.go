package worker

import (
	"context"
	"fmt"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// FulfillmentWorker consumes order events and surfaces actionable work to
// fulfillment staff. COD orders are actionable on creation; card orders
// become actionable once the gateway confirms payment.
type FulfillmentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewFulfillmentWorker creates a new fulfillment worker
func NewFulfillmentWorker(consumer *broker.Consumer, store *store.Store) *FulfillmentWorker {
	w := &FulfillmentWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderPaid(w.handleOrderPaid)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *FulfillmentWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting fulfillment worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *FulfillmentWorker) Stop() error {
	w.logger.Info("Stopping fulfillment worker")
	return w.consumer.Close()
}

func (w *FulfillmentWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	if event.PaymentMethod == models.PaymentMethodCOD {
		w.logger.Info("COD order ready for fulfillment",
			zap.String("order_id", event.OrderID),
			zap.String("tracking_code", event.TrackingCode),
			zap.Int("items", len(event.Items)))
	} else {
		w.logger.Info("Card order awaiting payment",
			zap.String("order_id", event.OrderID),
			zap.String("tracking_code", event.TrackingCode))
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *FulfillmentWorker) handleOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	w.logger.Info("Paid order ready for fulfillment",
		zap.String("order_id", event.OrderID),
		zap.String("tracking_code", event.TrackingCode),
		zap.String("payment_id", event.PaymentID))

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
