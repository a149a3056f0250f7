package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"SafeTrip/config"
)

const (
	// NotifyExchange 通知投递 direct exchange
	NotifyExchange = "safetrip.notify"
	// NotifySMSQueue 短信投递队列（routing key 与队列同名）
	NotifySMSQueue = "notify.sms"
)

var (
	conn   *amqp.Connection
	connMu sync.RWMutex
)

func Init() error {
	url := config.Cfg.GetRabbitMQURL()

	c, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// 声明拓扑：通知交换机 + 短信投递队列
	if err := ch.ExchangeDeclare(NotifyExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(NotifySMSQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(NotifySMSQueue, NotifySMSQueue, NotifyExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	connMu.Lock()
	conn = c
	connMu.Unlock()

	return nil
}

func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	conn = nil
	return err
}
