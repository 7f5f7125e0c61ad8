// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/danielhkuo/vote-tally/models"
)

type MemoryBrokerSuite struct {
	suite.Suite
	broker *MemoryBroker
	ctx    context.Context
}

func TestMemoryBrokerSuite(t *testing.T) {
	suite.Run(t, new(MemoryBrokerSuite))
}

func (s *MemoryBrokerSuite) SetupTest() {
	s.broker = NewMemoryBroker()
	s.ctx = context.Background()
}

func (s *MemoryBrokerSuite) TearDownTest() {
	s.Require().NoError(s.broker.Close())
}

func updateOf(id, votes int64) Change {
	return Change{Table: TableCandidates, Type: Update, New: &models.Candidate{ID: id, Votes: votes}}
}

func (s *MemoryBrokerSuite) receive(sub *Subscription) Change {
	select {
	case c, ok := <-sub.C:
		s.Require().True(ok, "subscription closed unexpectedly")
		return c
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for change")
	}
	return Change{}
}

func (s *MemoryBrokerSuite) TestFanOut() {
	a, err := s.broker.Subscribe(s.ctx, Filter{Table: TableCandidates, Event: All})
	s.Require().NoError(err)
	b, err := s.broker.Subscribe(s.ctx, Filter{Table: TableCandidates, Event: All})
	s.Require().NoError(err)

	s.Require().NoError(s.broker.Publish(s.ctx, updateOf(1, 5)))

	s.Equal(int64(5), s.receive(a).New.Votes)
	s.Equal(int64(5), s.receive(b).New.Votes)
}

func (s *MemoryBrokerSuite) TestDeliveryOrder() {
	sub, err := s.broker.Subscribe(s.ctx, Filter{Table: TableCandidates})
	s.Require().NoError(err)

	for v := int64(1); v <= 5; v++ {
		s.Require().NoError(s.broker.Publish(s.ctx, updateOf(1, v)))
	}
	for v := int64(1); v <= 5; v++ {
		s.Equal(v, s.receive(sub).New.Votes)
	}
}

func (s *MemoryBrokerSuite) TestEventFilter() {
	deletes, err := s.broker.Subscribe(s.ctx, Filter{Table: TableCandidates, Event: Delete})
	s.Require().NoError(err)

	s.Require().NoError(s.broker.Publish(s.ctx, updateOf(1, 1)))
	s.Require().NoError(s.broker.Publish(s.ctx, Change{Table: "vote_changes", Type: Delete, Old: &models.Candidate{ID: 9}}))
	s.Require().NoError(s.broker.Publish(s.ctx, Change{Table: TableCandidates, Type: Delete, Old: &models.Candidate{ID: 2}}))

	c := s.receive(deletes)
	s.Equal(Delete, c.Type)
	s.Equal(int64(2), c.RowID())
	s.Empty(deletes.C)
}

func (s *MemoryBrokerSuite) TestCloseSubscription() {
	sub, err := s.broker.Subscribe(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Equal(1, s.broker.Subscribers())

	sub.Close()
	sub.Close()
	s.Equal(0, s.broker.Subscribers())

	_, ok := <-sub.C
	s.False(ok)

	s.NoError(s.broker.Publish(s.ctx, updateOf(1, 1)))
}

func (s *MemoryBrokerSuite) TestFullBufferDrops() {
	sub, err := s.broker.Subscribe(s.ctx, Filter{})
	s.Require().NoError(err)

	for i := 0; i < subscriberBuffer+10; i++ {
		s.Require().NoError(s.broker.Publish(s.ctx, updateOf(1, int64(i))))
	}
	s.Len(sub.C, subscriberBuffer)
}

func (s *MemoryBrokerSuite) TestClosedBroker() {
	sub, err := s.broker.Subscribe(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Require().NoError(s.broker.Close())

	_, ok := <-sub.C
	s.False(ok)

	s.ErrorIs(s.broker.Publish(s.ctx, updateOf(1, 1)), ErrClosed)
	_, err = s.broker.Subscribe(s.ctx, Filter{})
	s.ErrorIs(err, ErrClosed)
	sub.Close()
}
