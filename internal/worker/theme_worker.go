package worker

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"github.com/aurify/api/internal/service"
)

// TaskTypeThemeRotate is the asynq task type for the scheduled theme
// rotation job
const TaskTypeThemeRotate = "themes:rotate"

// NewThemeRotateTask creates the rotation task. It carries no payload; the
// job reads everything it needs from the store.
func NewThemeRotateTask() *asynq.Task {
	return asynq.NewTask(TaskTypeThemeRotate, nil)
}

// ThemeWorker processes theme rotation tasks
type ThemeWorker struct {
	themeService service.ThemeRotator
}

// NewThemeWorker creates a new theme rotation worker
func NewThemeWorker(themeService service.ThemeRotator) *ThemeWorker {
	return &ThemeWorker{themeService: themeService}
}

// ProcessTask handles one scheduled rotation. The store-level move is
// atomic, so a double-fire of the scheduler is harmless: the second run
// observes the theme already archived and does nothing.
func (w *ThemeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	status, err := w.themeService.SelectAndRotate(ctx)
	if err != nil {
		log.Printf("[Theme Job] rotation failed: %v", err)
		return err
	}
	log.Printf("[Theme Job] %s", status)
	return nil
}
