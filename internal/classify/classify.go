// Package classify picks the best-matching topic for a paper and files it into a topic folder.
package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/hyperjump/shiori/internal/embedding"
	"github.com/hyperjump/shiori/pkg/utils"
)

// ErrNoTopics is returned when classification is requested without any topic.
var ErrNoTopics = errors.New("no topics given")

// ParseTopics splits a comma-separated topic list, trimming blanks and dropping
// empty and repeated entries while keeping first-seen order.
func ParseTopics(s string) []string {
	topics := lo.Map(strings.Split(s, ","), func(t string, _ int) string {
		return strings.TrimSpace(t)
	})
	topics = lo.Filter(topics, func(t string, _ int) bool { return t != "" })
	return lo.Uniq(topics)
}

// TopicScore is the cosine similarity between a paper and one topic.
type TopicScore struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// Classification is the best topic for a paper and the score of every candidate.
type Classification struct {
	Topic  string       `json:"topic"`
	Score  float64      `json:"score"`
	Scores []TopicScore `json:"scores"`
}

// Classifier compares paper embeddings with embedded topic names.
type Classifier struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// New returns a classifier that embeds topics with embedder. It must be the
// encoder that produced the paper embeddings.
func New(embedder embedding.Embedder, opts ...Option) *Classifier {
	c := &Classifier{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the topic whose embedding is most similar to paperEmbedding.
// Ties go to the topic listed first.
func (c *Classifier) Classify(ctx context.Context, paperEmbedding []float32, topics []string) (*Classification, error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	if len(paperEmbedding) == 0 {
		return nil, fmt.Errorf("paper embedding is empty")
	}
	topicEmbeddings, err := c.embedder.EmbedBatch(ctx, topics)
	if err != nil {
		return nil, fmt.Errorf("failed to embed topics: %w", err)
	}

	result := &Classification{Scores: make([]TopicScore, len(topics))}
	best := -1
	for i, topic := range topics {
		score := utils.CosineSimilarity(paperEmbedding, topicEmbeddings[i])
		result.Scores[i] = TopicScore{Topic: topic, Score: score}
		if best < 0 || score > result.Scores[best].Score {
			best = i
		}
	}
	result.Topic = result.Scores[best].Topic
	result.Score = result.Scores[best].Score
	c.logger.Debug("classified paper", zap.String("topic", result.Topic), zap.Float64("score", result.Score))
	return result, nil
}
