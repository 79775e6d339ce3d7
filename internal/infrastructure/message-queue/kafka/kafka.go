package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const defaultWriteTimeout = 5 * time.Second

// Producer writes event payloads to the configured topic partition. Writes go
// through the circuit breaker so an unreachable broker fails fast.
type Producer struct {
	mu   sync.Mutex
	conn *kafka.Conn
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func CreateKafkaProducer(ctx context.Context, config *config.Config, cb *gobreaker.CircuitBreaker[[]byte]) (*Producer, error) {
	conn, err := kafka.DialLeader(ctx, "tcp", config.KafkaConfig.BrokerAddress, config.KafkaConfig.BrokerTopic, config.KafkaConfig.BrokerPartition)
	if err != nil {
		return nil, err
	}

	return &Producer{conn: conn, cb: cb}, nil
}

func (p *Producer) WriteMessage(ctx context.Context, key string, value []byte) error {
	_, err := p.cb.Execute(func() ([]byte, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(defaultWriteTimeout)
		}
		if err := p.conn.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}

		msg := kafka.Message{Value: value}
		if key != "" {
			msg.Key = []byte(key)
		}

		_, err := p.conn.WriteMessages(msg)
		return nil, err
	})

	return err
}

func (p *Producer) Close() error {
	return p.conn.Close()
}
