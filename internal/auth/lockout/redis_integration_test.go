//go:build integration

package lockout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"admissio/internal/auth/lockout"
	"admissio/pkg/testutil/containers"
)

type RedisLockoutSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *lockout.RedisStore
}

func TestRedisLockoutSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockoutSuite))
}

func (s *RedisLockoutSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = lockout.NewRedisStore(s.redis.Client)
}

func (s *RedisLockoutSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockoutSuite) TestRecordFailure() {
	ctx := context.Background()

	count, err := s.store.RecordFailure(ctx, "asha@example.com", time.Minute)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.RecordFailure(ctx, "asha@example.com", time.Minute)
	s.Require().NoError(err)
	s.Equal(2, count)

	got, err := s.store.Failures(ctx, "asha@example.com")
	s.Require().NoError(err)
	s.Equal(2, got)
}

func (s *RedisLockoutSuite) TestFailuresUnknownEmail() {
	got, err := s.store.Failures(context.Background(), "nobody@example.com")
	s.Require().NoError(err)
	s.Zero(got)
}

func (s *RedisLockoutSuite) TestClear() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "asha@example.com", time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Clear(ctx, "asha@example.com"))

	got, err := s.store.Failures(ctx, "asha@example.com")
	s.Require().NoError(err)
	s.Zero(got)
}

func (s *RedisLockoutSuite) TestWindowExpiry() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "asha@example.com", time.Second)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		got, err := s.store.Failures(ctx, "asha@example.com")
		return err == nil && got == 0
	}, 5*time.Second, 200*time.Millisecond)
}
