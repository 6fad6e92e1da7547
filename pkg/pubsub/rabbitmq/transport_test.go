package rabbitmq

import (
	"context"
	"testing"
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
)

type TransportSuite struct {
	suite.Suite

	ctx               context.Context
	rabbitMQContainer *RabbitMQContainer
	transport         *Transport
}

func TestTransportSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rabbitmq integration tests in short mode")
	}
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	s.ctx = context.Background()
	s.rabbitMQContainer = SetupRabbitMQ(s.T())

	transport, err := NewTransport(s.rabbitMQContainer.URL)
	s.Require().NoError(err)
	s.transport = transport

	s.Require().NoError(s.transport.DeclareQueue("orders"))
}

func (s *TransportSuite) TearDownTest() {
	s.Require().NoError(s.transport.Close())
	s.rabbitMQContainer.Teardown(s.T())
}

func (s *TransportSuite) TestPublishBatchConfirmsEveryMessage() {
	msgs := []*pubsub.Message{
		{Data: []byte("m1"), OrderingKey: "customer-42"},
		{Data: []byte("m2")},
		{Data: []byte("m3"), Attributes: map[string]string{"content_type": "text/plain"}},
	}

	ids, err := s.transport.PublishBatch(s.ctx, "orders", msgs)
	s.Require().NoError(err)

	// Delivery tags count up from one on a fresh channel.
	s.Equal([]string{"1", "2", "3"}, ids)
}

func (s *TransportSuite) TestClosedTransportRefusesPublishes() {
	s.Require().NoError(s.transport.Close())

	_, err := s.transport.PublishBatch(s.ctx, "orders", []*pubsub.Message{{Data: []byte("m1")}})
	s.ErrorIs(err, ErrTransportClosed)

	transport, err := NewTransport(s.rabbitMQContainer.URL)
	s.Require().NoError(err)
	s.transport = transport
}

func (s *TransportSuite) TestDeliveryEndToEnd() {
	pub, err := pubsub.NewPublisher("orders", s.transport,
		pubsub.WithCountThreshold(2),
		pubsub.WithDelayThreshold(0),
	)
	s.Require().NoError(err)
	defer pub.Close()

	payloads := []string{"m1", "m2", "m3", "m4"}
	var results []*pubsub.PublishResult
	for _, payload := range payloads {
		results = append(results, pub.Publish(&pubsub.Message{
			Data:        []byte(payload),
			OrderingKey: "customer-42",
		}))
	}

	flushCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()
	s.Require().NoError(pub.Flush(flushCtx))

	for _, res := range results {
		id, err := res.Get(flushCtx)
		s.Require().NoError(err)
		s.NotEmpty(id)
	}

	conn, err := amqp.Dial(s.rabbitMQContainer.URL)
	s.Require().NoError(err)
	defer conn.Close()
	channel, err := conn.Channel()
	s.Require().NoError(err)
	defer channel.Close()

	deliveries, err := channel.Consume("orders", "", true, false, false, false, nil)
	s.Require().NoError(err)

	for _, want := range payloads {
		select {
		case delivery := <-deliveries:
			s.Equal(want, string(delivery.Body))
			s.Equal("customer-42", delivery.Headers[orderingKeyHeader])
			s.EqualValues(amqp.Persistent, delivery.DeliveryMode)
		case <-time.After(30 * time.Second):
			s.FailNow("timed out waiting for delivery")
		}
	}
}
