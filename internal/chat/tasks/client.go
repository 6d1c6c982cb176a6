package tasks

import (
	"fmt"

	"github.com/hibiken/asynq"

	"roofchat_backend/platform/logger"
)

// Client enqueues background tasks. The chat reply path never waits on these;
// a queue outage degrades analysis, not the conversation.
type Client struct {
	client *asynq.Client
	queue  string
	logger *logger.Logger
}

func NewClient(redisOpt asynq.RedisConnOpt, queue string, log *logger.Logger) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt),
		queue:  queue,
		logger: log,
	}
}

func (c *Client) EnqueueFileAnalysis(sessionID, fileURL, contentType string) error {
	task, err := NewFileAnalysisTask(sessionID, fileURL, contentType)
	if err != nil {
		return err
	}
	info, err := c.client.Enqueue(task, asynq.Queue(c.queue))
	if err != nil {
		return fmt.Errorf("enqueue file analysis: %w", err)
	}
	c.logger.Debug("file analysis task enqueued",
		"task_id", info.ID,
		"session_id", sessionID,
	)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
