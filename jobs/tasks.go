// Package jobs runs billing work in the background through Asynq: single
// customer runs enqueued over HTTP and the scheduled batch that bills
// every active customer.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeBillingRun bills one customer for one period.
	TaskTypeBillingRun = "billing:run"
	// TaskTypeBillingBatch fans a period start out over all active customers.
	TaskTypeBillingBatch = "billing:run_batch"
)

// BillingRunPayload identifies one customer run.
type BillingRunPayload struct {
	CustomerID string `json:"customer_id"`
	StartDate  string `json:"start_date"`
}

// BillingBatchPayload carries the shared period start for a batch.
type BillingBatchPayload struct {
	StartDate string `json:"start_date"`
}

// NewBillingRunTask constructs a single-customer billing task.
func NewBillingRunTask(payload BillingRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBillingRun, data), nil
}

// NewBillingBatchTask constructs a batch billing task.
func NewBillingBatchTask(payload BillingBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBillingBatch, data), nil
}

// Client submits billing jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueBillingRun queues a single-customer run.
func (c *Client) EnqueueBillingRun(ctx context.Context, payload BillingRunPayload) (*asynq.TaskInfo, error) {
	task, err := NewBillingRunTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueBillingBatch queues a batch run.
func (c *Client) EnqueueBillingBatch(ctx context.Context, payload BillingBatchPayload) (*asynq.TaskInfo, error) {
	task, err := NewBillingBatchTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
