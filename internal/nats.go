package internal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	subjectRefresh      = "squad.refresh"
	subjectRunCompleted = "squad.run.completed"
)

type NATSClient struct {
	Conn   *nats.Conn
	logger *Logger
}

func NewNATSClient(cfg *Config, logger *Logger) (*NATSClient, error) {
	conn, err := nats.Connect(cfg.NATSUrl,
		nats.Name(cfg.NATSClientID),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSClient{Conn: conn, logger: logger}, nil
}

func (nc *NATSClient) publish(subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return nc.Conn.Publish(subject, data)
}

func (nc *NATSClient) PublishRefreshTask(task RefreshTask) error {
	return nc.publish(subjectRefresh, task)
}

func (nc *NATSClient) PublishRunCompleted(report *RunReport) error {
	return nc.publish(subjectRunCompleted, report)
}

// StartRefreshWorker consumes refresh tasks and runs the pipeline to keep
// the summary cache warm, so interactive requests mostly land on fresh
// entries. Workers share the queue group, one run per task across replicas;
// concurrent runs still race on the blob like any overlapping runs do.
func (nc *NATSClient) StartRefreshWorker(pipeline *Pipeline) (*nats.Subscription, error) {
	handler := func(msg *nats.Msg) {
		nc.processRefreshTask(msg, pipeline)
	}

	sub, err := nc.Conn.QueueSubscribe(subjectRefresh, "refresh-workers", handler)
	if err != nil {
		return nil, err
	}

	nc.logger.Info("refresh_worker_started").
		Component("nats").
		Operation("start_worker").
		Worker("refresh-workers", subjectRefresh).
		Log()
	return sub, nil
}

func (nc *NATSClient) processRefreshTask(msg *nats.Msg, pipeline *Pipeline) {
	var task RefreshTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		nc.logger.Error("refresh_task_unmarshal_failed").
			Component("nats").
			Operation("process_refresh").
			Err(err).
			Log()
		return
	}

	nc.logger.Info("refresh_task_received").
		Component("nats").
		Operation("process_refresh").
		Worker("refresh-workers", subjectRefresh).
		Meta("count", task.Count).
		Meta("reason", task.Reason).
		Log()

	report := pipeline.Run(context.Background(), task.Count)

	if err := nc.PublishRunCompleted(report); err != nil {
		nc.logger.Error("run_completed_publish_failed").
			Component("nats").
			Operation("process_refresh").
			Err(err).
			Log()
	}
}

// ScheduleRefresh publishes a refresh task on a fixed interval.
func (nc *NATSClient) ScheduleRefresh(interval time.Duration, count int) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			task := RefreshTask{Count: count, Reason: "scheduled"}
			if err := nc.PublishRefreshTask(task); err != nil {
				nc.logger.Error("refresh_task_publish_failed").
					Component("nats").
					Operation("schedule_refresh").
					Err(err).
					Log()
			}
		}
	}()

	nc.logger.Info("refresh_scheduler_started").
		Component("nats").
		Operation("schedule_refresh").
		Meta("interval", interval.String()).
		Log()
}
