package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ResultSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultSuite))
}

func (s *ResultSuite) TestGetReturnsID() {
	r := newPublishResult()
	go r.set("id-1", nil)

	id, err := r.Get(context.Background())
	s.NoError(err)
	s.Equal("id-1", id)
}

func (s *ResultSuite) TestGetReturnsError() {
	errBoom := errors.New("boom")
	r := newPublishResult()
	r.set("", errBoom)

	id, err := r.Get(context.Background())
	s.ErrorIs(err, errBoom)
	s.Empty(id)
}

func (s *ResultSuite) TestGetHonorsContext() {
	r := newPublishResult()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Get(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)

	// A context error abandons the wait, not the publish. The result is
	// still usable once it resolves.
	r.set("id-2", nil)
	id, err := r.Get(context.Background())
	s.NoError(err)
	s.Equal("id-2", id)
}

func (s *ResultSuite) TestResolvesExactlyOnce() {
	r := newPublishResult()
	r.set("first", nil)
	r.set("second", errors.New("late failure"))

	id, err := r.Get(context.Background())
	s.NoError(err)
	s.Equal("first", id)
}

func (s *ResultSuite) TestReadyClosesOnResolve() {
	r := newPublishResult()

	select {
	case <-r.Ready():
		s.Fail("Ready closed before resolution")
	default:
	}

	r.set("id-3", nil)

	select {
	case <-r.Ready():
	case <-time.After(time.Second):
		s.Fail("Ready not closed after resolution")
	}
}

func (s *ResultSuite) TestResolvedResult() {
	r := resolvedResult(ErrNilMessage)

	select {
	case <-r.Ready():
	default:
		s.Fail("local rejection must come back already resolved")
	}

	_, err := r.Get(context.Background())
	s.ErrorIs(err, ErrNilMessage)
}
