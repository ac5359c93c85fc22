package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dexwatch/swap-tracker/pkg/common/logger"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var (
	ErrPermanent = errors.New("permanent messaging error")
	MaxMsgSize   = 64 * 1024 // 64KB, rendered alerts are small
)

type MessageQueue interface {
	Enqueue(topic string, message []byte, options *EnqueueOptions) error
	// Dequeue handlers shouldn't block: an unacked message is redelivered
	// after the ack wait elapses.
	Dequeue(topic string, handler func(message []byte) error) error
	Close()
}

type EnqueueOptions struct {
	IdempotentKey string
}

type msgQueue struct {
	consumerName    string
	js              jetstream.JetStream
	consumer        jetstream.Consumer
	consumerContext jetstream.ConsumeContext
}

type NATSMessageQueueManager struct {
	queueName string
	js        jetstream.JetStream
}

func NewNATSMessageQueueManager(queueName string, subjectWildCards []string, nc *nats.Conn) (*NATSMessageQueueManager, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	ctx := context.Background()
	stream, err := js.Stream(ctx, queueName)
	if err != nil {
		logger.Warn("Stream not found, creating new stream", "stream", queueName)
	}
	if stream != nil {
		info, _ := stream.Info(ctx)
		logger.Info("Stream found", "name", info.Config.Name, "subjects", info.Config.Subjects, "msgs", info.State.Msgs)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        queueName,
		Description: "Stream for " + queueName,
		Subjects:    subjectWildCards,
		MaxMsgSize:  int32(MaxMsgSize),
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      2 * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("create jetstream stream: %w", err)
	}

	return &NATSMessageQueueManager{
		queueName: queueName,
		js:        js,
	}, nil
}

func (m *NATSMessageQueueManager) NewMessageQueue(consumerName string) (MessageQueue, error) {
	mq := &msgQueue{
		consumerName: consumerName,
		js:           m.js,
	}
	cfg := jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		MaxAckPending: 4,
		FilterSubjects: []string{
			fmt.Sprintf("%s.%s.>", m.queueName, consumerName),
		},
		MaxDeliver: 3,
	}
	consumer, err := m.js.CreateOrUpdateConsumer(context.Background(), m.queueName, cfg)
	if err != nil {
		return nil, fmt.Errorf("create jetstream consumer: %w", err)
	}

	mq.consumer = consumer
	return mq, nil
}

func (mq *msgQueue) Enqueue(topic string, message []byte, options *EnqueueOptions) error {
	header := nats.Header{}
	if options != nil && options.IdempotentKey != "" {
		header.Add("Nats-Msg-Id", options.IdempotentKey)
	}

	_, err := mq.js.PublishMsg(context.Background(), &nats.Msg{
		Subject: topic,
		Data:    message,
		Header:  header,
	})
	if err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}
	return nil
}

func (mq *msgQueue) Dequeue(topic string, handler func(message []byte) error) error {
	c, err := mq.consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(msg.Data()); err != nil {
			if errors.Is(err, ErrPermanent) {
				msg.Term()
				return
			}
			logger.Error("Message handler failed", "err", err, "subject", msg.Subject())
			msg.Nak()
			return
		}
		if err := msg.Ack(); err != nil {
			logger.Error("Ack failed", "err", err)
		}
	})
	mq.consumerContext = c
	return err
}

func (mq *msgQueue) Close() {
	if mq.consumerContext != nil {
		mq.consumerContext.Stop()
	}
}
