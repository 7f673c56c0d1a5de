package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"copro-workers/internal/common/config"
	"copro-workers/internal/common/logger"
)

// JobHandler is implemented by every task-type handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Registration ties a task type to its handler.
type Registration struct {
	TaskType string
	Handler  JobHandler
}

// StartWorker opens a job worker for the task type unless it is disabled.
// It returns nil for disabled workers.
func StartWorker(client zbc.Client, reg Registration, wcfg config.WorkerConfig, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": reg.TaskType})
		return nil
	}

	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}
	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	w := client.NewJobWorker().
		JobType(reg.TaskType).
		Handler(reg.Handler.Handle).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      reg.TaskType,
		"maxJobsActive": maxJobs,
		"timeoutMs":     timeout.Milliseconds(),
	})
	return w
}
