package usecase

import (
	"context"
	"encoding/json"

	"FxPulse/internal/domain/models"
	pkgkafka "FxPulse/pkg/kafka"
)

// KafkaTicksHandler consumes tick messages from Kafka and feeds the
// market engine. Malformed messages are dropped without retry; the
// engine handles all further validation itself.
type KafkaTicksHandler struct {
	topic  string
	engine *MarketEngine
}

func NewKafkaTicksHandler(topic string, engine *MarketEngine) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, engine: engine}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {pair, price, bid, ask, t, v, type}
// Two-sided messages (bid and ask both set) are quotes, everything
// else a trade.
func (h *KafkaTicksHandler) Handle(_ context.Context, b []byte) error {
	var m struct {
		Pair  string  `json:"pair"`
		Price float64 `json:"price"`
		Bid   float64 `json:"bid"`
		Ask   float64 `json:"ask"`
		T     int64   `json:"t"`
		V     float64 `json:"v"`
		Type  string  `json:"type"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if m.Bid > 0 && m.Ask > 0 {
		h.engine.IngestQuote(&models.QuoteUpdate{
			Pair: m.Pair, Bid: m.Bid, Ask: m.Ask, Timestamp: m.T,
		})
		return nil
	}
	h.engine.IngestTrade(&models.TradeUpdate{
		Pair: m.Pair, Price: m.Price, Volume: m.V,
		Timestamp: m.T, Type: models.PriceType(m.Type),
	})
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
