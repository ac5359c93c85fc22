package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dexwatch/swap-tracker/internal/alert"
	"github.com/dexwatch/swap-tracker/pkg/infra"
)

// AlertEvent is the structured form of an alerted trade published to the
// message queue for downstream consumers.
type AlertEvent struct {
	Chain     string            `json:"chain"`
	Project   string            `json:"project"`
	TxID      string            `json:"tx_id"`
	TradeType string            `json:"trade_type"`
	Value     string            `json:"value"`
	Sender    string            `json:"sender"`
	Messages  map[string]string `json:"messages"` // locale -> rendered text
	Timestamp int64             `json:"timestamp"`
}

// Emitter publishes alert events to the queue. The tx id doubles as the
// idempotency key so a retried batch cannot double-publish a trade.
type Emitter struct {
	queue         infra.MessageQueue
	subjectPrefix string
}

func NewEmitter(queue infra.MessageQueue, subjectPrefix string) *Emitter {
	return &Emitter{
		queue:         queue,
		subjectPrefix: subjectPrefix,
	}
}

func (e *Emitter) EmitAlert(a *alert.Alert) error {
	event := AlertEvent{
		Chain:     a.View.Chain,
		Project:   a.View.Project,
		TxID:      a.View.TxID,
		TradeType: string(a.View.TradeType),
		Value:     a.View.Value,
		Sender:    a.View.Sender,
		Messages:  a.Messages,
		Timestamp: time.Now().UTC().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s.%s", e.subjectPrefix, event.Project, event.Chain)
	return e.queue.Enqueue(subject, data, &infra.EnqueueOptions{
		IdempotentKey: event.TxID,
	})
}

func (e *Emitter) Close() {
	if e.queue != nil {
		e.queue.Close()
	}
}
