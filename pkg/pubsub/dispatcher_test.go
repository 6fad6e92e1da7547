package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DispatcherSuite struct {
	suite.Suite

	ctx context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *DispatcherSuite) get(res *PublishResult) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	return res.Get(ctx)
}

func (s *DispatcherSuite) TestEvictsIdleWorkers() {
	transport := &capturingTransport{}
	pub, err := NewPublisher("orders", transport,
		WithCountThreshold(1),
		WithDelayThreshold(0),
		WithIdleTimeout(25*time.Millisecond),
		WithEvictionInterval(10*time.Millisecond),
	)
	s.Require().NoError(err)
	defer pub.Close()

	res := pub.Publish(&Message{Data: []byte("m1"), OrderingKey: "customer-1"})
	_, err = s.get(res)
	s.Require().NoError(err)
	s.Equal(int64(1), pub.Stats().ActiveWorkers)

	// Once the key goes quiet the sweep retires its worker.
	s.Eventually(func() bool {
		return pub.Stats().ActiveWorkers == 0
	}, 3*time.Second, 10*time.Millisecond)

	// Publishing to the key again spawns a fresh worker transparently.
	res = pub.Publish(&Message{Data: []byte("m2"), OrderingKey: "customer-1"})
	id, err := s.get(res)
	s.NoError(err)
	s.NotEmpty(id)
	s.Equal(int64(1), pub.Stats().ActiveWorkers)
}

func (s *DispatcherSuite) TestPausedKeysAreNeverEvicted() {
	errBoom := errors.New("transport unavailable")
	transport := &capturingTransport{
		failWhen: func(msgs []*Message) error { return errBoom },
	}

	pub, err := NewPublisher("orders", transport,
		WithCountThreshold(1),
		WithDelayThreshold(0),
		WithIdleTimeout(20*time.Millisecond),
		WithEvictionInterval(10*time.Millisecond),
	)
	s.Require().NoError(err)
	defer pub.Close()

	res := pub.Publish(&Message{Data: []byte("m1"), OrderingKey: "k"})
	_, err = s.get(res)
	s.ErrorIs(err, errBoom)

	s.Eventually(func() bool {
		return pub.Stats().PausedKeys == 1
	}, 3*time.Second, 5*time.Millisecond)

	// Give the sweep several idle windows; the paused worker must survive
	// them all, or the key would forget it is paused.
	time.Sleep(100 * time.Millisecond)
	s.Equal(int64(1), pub.Stats().ActiveWorkers)

	res = pub.Publish(&Message{Data: []byte("m2"), OrderingKey: "k"})
	_, err = s.get(res)
	s.ErrorIs(err, ErrOrderingKeyPaused)
}

func (s *DispatcherSuite) TestZeroIdleTimeoutDisablesEviction() {
	transport := &capturingTransport{}
	pub, err := NewPublisher("orders", transport,
		WithCountThreshold(1),
		WithDelayThreshold(0),
		WithIdleTimeout(0),
		WithEvictionInterval(5*time.Millisecond),
	)
	s.Require().NoError(err)
	defer pub.Close()

	res := pub.Publish(&Message{Data: []byte("m1"), OrderingKey: "customer-1"})
	_, err = s.get(res)
	s.Require().NoError(err)

	time.Sleep(50 * time.Millisecond)
	s.Equal(int64(1), pub.Stats().ActiveWorkers)
}
