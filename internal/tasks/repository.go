package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/store"
)

const StorageKey = "munjiz_tasks_data_v1"

var ErrTaskNotFound = errors.New("tasks: task not found")

// Repository holds the task collection in memory and rewrites the whole
// collection to the store after every mutation.
type Repository struct {
	mu    sync.RWMutex
	tasks []models.Task
	store *store.Store
	loc   *time.Location
	log   *logrus.Entry
	newID func() string
}

func NewRepository(st *store.Store, logger *logging.Logger, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{
		store: st,
		loc:   loc,
		log:   logger.Component("tasks"),
		newID: uuid.NewString,
	}
}

// Load reads the persisted collection. When nothing has been stored yet
// and seed is set, the demo tasks are written instead. An empty stored
// collection stays empty.
func (r *Repository) Load(ctx context.Context, seed bool, today time.Time) {
	var loaded []models.Task
	found := r.store.Get(ctx, StorageKey, &loaded)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case found:
		r.tasks = loaded
		r.log.Infof("Loaded %d tasks", len(loaded))
	case seed:
		r.tasks = SeedTasks(today, r.loc, r.newID)
		r.persistLocked(ctx)
		r.log.Infof("Seeded %d demo tasks", len(r.tasks))
	default:
		r.tasks = nil
	}
}

// Add assigns a fresh id and pending status and puts the task first.
func (r *Repository) Add(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	task := draft.Task(r.newID())
	if err := task.Validate(); err != nil {
		return models.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append([]models.Task{task}, r.tasks...)
	r.persistLocked(ctx)
	return task, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Task, error) {
	if !status.IsValid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	return r.mutate(ctx, id, func(t *models.Task) error {
		t.Status = status
		return nil
	})
}

// Update replaces the task with the same id.
func (r *Repository) Update(ctx context.Context, task models.Task) (models.Task, error) {
	if task.EmailReminderFrequency == "" {
		task.EmailReminderFrequency = models.FrequencyNone
	}
	if err := task.Validate(); err != nil {
		return models.Task{}, err
	}
	return r.mutate(ctx, task.ID, func(t *models.Task) error {
		*t = task
		return nil
	})
}

// SetReminder rewrites the reminder fields of a task. An empty custom
// value clears the one-shot reminder.
func (r *Repository) SetReminder(ctx context.Context, id string, freq models.ReminderFrequency, custom string) (models.Task, error) {
	if !freq.IsValid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidFrequency, freq)
	}
	if custom != "" {
		if _, err := models.ParseReminderTime(custom, r.loc); err != nil {
			return models.Task{}, err
		}
	}
	return r.mutate(ctx, id, func(t *models.Task) error {
		if freq != "" {
			t.EmailReminderFrequency = freq
		}
		t.CustomReminderDate = custom
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			r.persistLocked(ctx)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

func (r *Repository) Get(id string) (models.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Snapshot returns a copy of the collection in stored order.
func (r *Repository) Snapshot() []models.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

func (r *Repository) Location() *time.Location {
	return r.loc
}

func (r *Repository) mutate(ctx context.Context, id string, fn func(*models.Task) error) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID != id {
			continue
		}
		updated := r.tasks[i]
		if err := fn(&updated); err != nil {
			return models.Task{}, err
		}
		r.tasks[i] = updated
		r.persistLocked(ctx)
		return updated, nil
	}
	return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

func (r *Repository) persistLocked(ctx context.Context) {
	out := r.tasks
	if out == nil {
		out = []models.Task{}
	}
	r.store.Set(ctx, StorageKey, out)
}
