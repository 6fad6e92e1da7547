package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/stretchr/testify/suite"
)

type InMemSuite struct {
	suite.Suite

	ctx context.Context
}

func TestInMemSuite(t *testing.T) {
	suite.Run(t, new(InMemSuite))
}

func (s *InMemSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *InMemSuite) TestPublishBatchStoresAndAssignsIDs() {
	transport := New()

	msgs := []*pubsub.Message{
		{Data: []byte("m1"), OrderingKey: "k", Attributes: map[string]string{"a": "1"}},
		{Data: []byte("m2")},
	}

	ids, err := transport.PublishBatch(s.ctx, "orders", msgs)
	s.Require().NoError(err)
	s.Require().Len(ids, 2)
	s.NotEqual(ids[0], ids[1])

	stored := transport.Messages("orders")
	s.Require().Len(stored, 2)
	s.Equal("m1", string(stored[0].Data))
	s.Equal("k", stored[0].OrderingKey)
	s.Equal(map[string]string{"a": "1"}, stored[0].Attributes)
	s.Equal(ids[0], stored[0].ID)
	s.Equal(ids[1], stored[1].ID)
	s.Equal(2, transport.Len("orders"))
	s.Equal(0, transport.Len("other"))
}

func (s *InMemSuite) TestHookFailureStoresNothing() {
	errBoom := errors.New("injected failure")
	transport := New(WithPublishHook(func(topic string, msgs []*pubsub.Message) error {
		return errBoom
	}))

	_, err := transport.PublishBatch(s.ctx, "orders", []*pubsub.Message{{Data: []byte("m1")}})
	s.ErrorIs(err, errBoom)
	s.Equal(0, transport.Len("orders"))
}

func (s *InMemSuite) TestDoneContextStoresNothing() {
	transport := New()

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := transport.PublishBatch(ctx, "orders", []*pubsub.Message{{Data: []byte("m1")}})
	s.ErrorIs(err, context.Canceled)
	s.Equal(0, transport.Len("orders"))
}

func (s *InMemSuite) TestWorksUnderPublisher() {
	transport := New()
	pub, err := pubsub.NewPublisher("orders", transport,
		pubsub.WithCountThreshold(2),
		pubsub.WithDelayThreshold(0),
	)
	s.Require().NoError(err)
	defer pub.Close()

	res1 := pub.Publish(&pubsub.Message{Data: []byte("m1"), OrderingKey: "k"})
	res2 := pub.Publish(&pubsub.Message{Data: []byte("m2"), OrderingKey: "k"})

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	id1, err := res1.Get(ctx)
	s.Require().NoError(err)
	id2, err := res2.Get(ctx)
	s.Require().NoError(err)

	stored := transport.Messages("orders")
	s.Require().Len(stored, 2)
	s.Equal(id1, stored[0].ID)
	s.Equal(id2, stored[1].ID)

	// Monotonic ULIDs sort by delivery order.
	s.Less(id1, id2)
}
