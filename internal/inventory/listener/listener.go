package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/broker"
	"github.com/danwidi/erp-ledger-service/internal/inventory"
	"github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"go.uber.org/zap"
)

// InventoryListener consumes goods-received events published by the warehouse
// gateway and posts the receipts into the ledger.
type InventoryListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type GoodsReceivedEvent struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Payload   ReceivingPayload `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
}

type ReceivingPayload struct {
	PurchaseOrderID string                `json:"purchase_order_id"`
	ReceivedBy      string                `json:"received_by"`
	Items           []ReceivedItemPayload `json:"items"`
}

type ReceivedItemPayload struct {
	ItemID   string  `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event GoodsReceivedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "GoodsReceived" {
		return
	}

	l.logger.Info("Processing GoodsReceived event",
		zap.String("purchase_order_id", event.Payload.PurchaseOrderID))

	performedBy := event.Payload.ReceivedBy
	if performedBy == "" {
		performedBy = "system"
	}

	for _, item := range event.Payload.Items {
		input := &dto.AdjustQuantityInput{
			ItemID:        item.ItemID,
			Delta:         item.Quantity,
			Reason:        "goods received",
			ReferenceType: "purchase_order",
			ReferenceID:   event.Payload.PurchaseOrderID,
			PerformedBy:   performedBy,
		}

		if _, err := l.uc.AdjustQuantity(ctx, input); err != nil {
			l.logger.Error("Failed to adjust inventory for received item",
				zap.String("purchase_order_id", event.Payload.PurchaseOrderID),
				zap.String("item_id", item.ItemID),
				zap.Error(err),
			)
		}
	}
}
