package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type OptionsSuite struct {
	suite.Suite
}

func TestOptionsSuite(t *testing.T) {
	suite.Run(t, new(OptionsSuite))
}

func (s *OptionsSuite) buildConfig(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.clamp()
	return cfg
}

func (s *OptionsSuite) TestDefaults() {
	cfg := s.buildConfig()

	s.Equal(defaultCountThreshold, cfg.countThreshold)
	s.Equal(defaultByteThreshold, cfg.byteThreshold)
	s.Equal(defaultDelayThreshold, cfg.delayThreshold)
	s.Equal(defaultPublishTimeout, cfg.publishTimeout)
	s.Equal(defaultIdleTimeout, cfg.idleTimeout)
	s.Equal(defaultEvictInterval, cfg.evictInterval)
	s.NotNil(cfg.logger)
	s.Nil(cfg.metrics)
	s.Nil(cfg.instrumentation)
}

func (s *OptionsSuite) TestThresholds() {
	scenarios := []struct {
		name     string
		opts     []Option
		expected func(cfg *config)
	}{
		{
			name: "should apply explicit thresholds",
			opts: []Option{
				WithCountThreshold(50),
				WithByteThreshold(2048),
				WithDelayThreshold(25 * time.Millisecond),
			},
			expected: func(cfg *config) {
				s.Equal(50, cfg.countThreshold)
				s.Equal(2048, cfg.byteThreshold)
				s.Equal(25*time.Millisecond, cfg.delayThreshold)
			},
		},
		{
			name: "should clamp thresholds above the server maxima",
			opts: []Option{
				WithCountThreshold(5000),
				WithByteThreshold(50 * 1024 * 1024),
				WithDelayThreshold(time.Hour),
			},
			expected: func(cfg *config) {
				s.Equal(maxCountThreshold, cfg.countThreshold)
				s.Equal(maxByteThreshold, cfg.byteThreshold)
				s.Equal(maxDelayThreshold, cfg.delayThreshold)
			},
		},
		{
			name: "should turn a zero count threshold into one message per batch",
			opts: []Option{WithCountThreshold(0)},
			expected: func(cfg *config) {
				s.Equal(1, cfg.countThreshold)
			},
		},
		{
			name: "should keep a zero byte threshold, disabling the byte dimension",
			opts: []Option{WithByteThreshold(0)},
			expected: func(cfg *config) {
				s.Equal(0, cfg.byteThreshold)
			},
		},
		{
			name: "should keep a zero delay threshold, disabling timer flushes",
			opts: []Option{WithDelayThreshold(0)},
			expected: func(cfg *config) {
				s.Equal(time.Duration(0), cfg.delayThreshold)
			},
		},
		{
			name: "should ignore negative values",
			opts: []Option{
				WithCountThreshold(-1),
				WithByteThreshold(-1),
				WithDelayThreshold(-time.Second),
				WithPublishTimeout(-time.Second),
				WithIdleTimeout(-time.Second),
				WithEvictionInterval(-time.Second),
			},
			expected: func(cfg *config) {
				s.Equal(defaultCountThreshold, cfg.countThreshold)
				s.Equal(defaultByteThreshold, cfg.byteThreshold)
				s.Equal(defaultDelayThreshold, cfg.delayThreshold)
				s.Equal(defaultPublishTimeout, cfg.publishTimeout)
				s.Equal(defaultIdleTimeout, cfg.idleTimeout)
				s.Equal(defaultEvictInterval, cfg.evictInterval)
			},
		},
		{
			name: "should ignore nil logger, metrics and instrumentation",
			opts: []Option{
				WithLogger(nil),
				WithMetrics(nil),
				WithInstrumentation(nil),
			},
			expected: func(cfg *config) {
				s.NotNil(cfg.logger)
				s.Nil(cfg.metrics)
				s.Nil(cfg.instrumentation)
			},
		},
		{
			name: "should disable eviction with a zero idle timeout",
			opts: []Option{WithIdleTimeout(0)},
			expected: func(cfg *config) {
				s.Equal(time.Duration(0), cfg.idleTimeout)
			},
		},
	}

	for _, scenario := range scenarios {
		s.T().Run(scenario.name, func(t *testing.T) {
			scenario.expected(s.buildConfig(scenario.opts...))
		})
	}
}
