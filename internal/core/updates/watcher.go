package updates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

var (
	ErrJobPollFailed    = errors.New("update status poll failed")
	ErrPollTimeout      = errors.New("update job did not finish in time")
	ErrUpdateInProgress = errors.New("an update is already in progress")
)

// Watcher triggers extraction/update jobs and polls them until done. At most
// one job is in flight per watcher.
type Watcher struct {
	Articles service.ArticleService
	Interval time.Duration
	MaxPolls int // 0 polls forever
	Logger   *log.Logger

	mu  sync.Mutex
	job *model.UpdateJob
	now func() time.Time
}

func NewWatcher(articles service.ArticleService, interval time.Duration, maxPolls int, logger *log.Logger) *Watcher {
	return &Watcher{
		Articles: articles,
		Interval: interval,
		MaxPolls: maxPolls,
		Logger:   logger,
		now:      time.Now,
	}
}

// Trigger asks the article service to start a job and returns its handle.
func (w *Watcher) Trigger(ctx context.Context, scope model.ExtractionScope, autoAdd bool) (model.UpdateJob, error) {
	w.mu.Lock()
	if w.job != nil && w.job.Status == model.JobRunning {
		w.mu.Unlock()
		return model.UpdateJob{}, ErrUpdateInProgress
	}
	job := &model.UpdateJob{
		ID:        uuid.NewString(),
		Scope:     scope,
		AutoAdd:   autoAdd,
		Status:    model.JobRunning,
		StartedAt: w.now(),
	}
	previous := w.job
	w.job = job
	w.mu.Unlock()

	if err := w.Articles.TriggerUpdate(ctx, scope, autoAdd); err != nil {
		w.mu.Lock()
		w.job = previous
		w.mu.Unlock()
		if errors.Is(err, service.ErrBusy) {
			return model.UpdateJob{}, fmt.Errorf("%w: %w", ErrUpdateInProgress, err)
		}
		return model.UpdateJob{}, fmt.Errorf("trigger update: %w", err)
	}

	w.Logger.Info("update job started", "job", job.ID, "scope", scope, "auto_add", autoAdd)
	return *job, nil
}

// Wait polls the job every Interval. When the job is seen done, polling
// stops and onDone runs exactly once before Wait returns. Poll errors are
// logged and retried on the next tick. After MaxPolls unfinished polls the
// job is marked timed out and ErrPollTimeout is returned.
func (w *Watcher) Wait(ctx context.Context, job model.UpdateJob, onDone func(context.Context) error) (model.UpdateJob, error) {
	if !w.owns(job.ID) {
		return job, fmt.Errorf("update job %s is not the current job", job.ID)
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		select {
		case <-ctx.Done():
			w.release(job.ID)
			return w.snapshot(job), ctx.Err()
		case <-ticker.C:
		}

		status, err := w.Articles.UpdateStatus(ctx)
		w.update(job.ID, func(j *model.UpdateJob) { j.Polls = polls })

		switch {
		case err != nil:
			w.Logger.Warn("update status poll failed", "job", job.ID, "poll", polls, "err", fmt.Errorf("%w: %w", ErrJobPollFailed, err))
		case status == model.JobDone:
			w.finish(job.ID, model.JobDone, "")
			w.Logger.Info("update job done", "job", job.ID, "polls", polls)
			var doneErr error
			if onDone != nil {
				doneErr = onDone(ctx)
			}
			return w.snapshot(job), doneErr
		}

		if w.MaxPolls > 0 && polls >= w.MaxPolls {
			w.finish(job.ID, model.JobTimedOut, ErrPollTimeout.Error())
			w.Logger.Error("update job timed out", "job", job.ID, "polls", polls)
			return w.snapshot(job), ErrPollTimeout
		}
	}
}

// Current returns the most recent job, finished or not.
func (w *Watcher) Current() (model.UpdateJob, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.job == nil {
		return model.UpdateJob{}, false
	}
	return *w.job, true
}

func (w *Watcher) owns(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.job != nil && w.job.ID == id && w.job.Status == model.JobRunning
}

func (w *Watcher) update(id string, fn func(*model.UpdateJob)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.job != nil && w.job.ID == id {
		fn(w.job)
	}
}

func (w *Watcher) finish(id string, status model.JobStatus, msg string) {
	at := w.now()
	w.update(id, func(j *model.UpdateJob) {
		j.Status = status
		j.FinishedAt = &at
		j.Error = msg
	})
}

// release drops a job nobody is watching any more.
func (w *Watcher) release(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.job != nil && w.job.ID == id && w.job.Status == model.JobRunning {
		w.job = nil
	}
}

func (w *Watcher) snapshot(fallback model.UpdateJob) model.UpdateJob {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.job != nil && w.job.ID == fallback.ID {
		return *w.job
	}
	return fallback
}
