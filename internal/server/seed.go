package server

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/model"
	"taskdeck/internal/store"
)

type seedTask struct {
	title, description string
	status             model.Status
	priority           model.Priority
	list               string
	// dueIn is days relative to today; nil means no due date.
	dueIn *int
	tags  []string
}

func days(n int) *int { return &n }

var sampleTasks = []seedTask{
	{"Complete project documentation", "Write documentation for the API endpoints, setup instructions and a user guide.", model.StatusInProgress, model.PriorityHigh, "work", days(2), []string{"docs"}},
	{"Fix critical bug in authentication", "Users cannot log in after the latest update.", model.StatusTodo, model.PriorityHigh, "work", days(1), []string{"urgent"}},
	{"Prepare presentation for client meeting", "Slides and demo materials for Friday.", model.StatusInProgress, model.PriorityHigh, "work", days(3), nil},
	{"Review code pull requests", "Five pending pull requests from the team.", model.StatusTodo, model.PriorityMedium, "work", days(5), nil},
	{"Update dependencies", "Bump packages to the latest stable versions and rerun the tests.", model.StatusTodo, model.PriorityMedium, "work", days(7), nil},
	{"Optimize database queries", "Add indexes where the slow query log points.", model.StatusTodo, model.PriorityMedium, "work", days(10), nil},
	{"Update company website", "", model.StatusTodo, model.PriorityLow, "work", days(20), nil},
	{"Setup development environment", "", model.StatusDone, model.PriorityHigh, "work", days(-5), nil},
	{"Buy groceries", "Milk, eggs, bread, coffee.", model.StatusTodo, model.PriorityMedium, "personal", days(0), []string{"home"}},
	{"Schedule dentist appointment", "", model.StatusTodo, model.PriorityLow, "personal", nil, []string{"health"}},
	{"Renew passport", "Check the photo requirements first.", model.StatusTodo, model.PriorityHigh, "personal", days(-2), nil},
	{"Pick up dry cleaning", "", model.StatusTodo, model.PriorityLow, "errands", days(1), []string{"home"}},
	{"Read chapter 3", "", model.StatusTodo, model.PriorityLow, "", nil, nil},
}

var (
	sampleLists = []string{"errands"}
	sampleTags  = []string{"docs", "health", "home", "urgent"}
)

// Seed inserts the sample data when the task table is empty. It reports how
// many tasks were inserted.
func Seed(ctx context.Context, db *store.DB, now time.Time) (int, error) {
	n, err := db.CountTasks(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	stamp := now.UTC()
	for _, name := range sampleLists {
		if err := db.InsertList(ctx, model.List{ID: uuid.NewString(), Name: name, CreatedAt: stamp.Format(time.RFC3339Nano)}); err != nil {
			if !errors.As(err, new(store.ExistsError)) {
				return 0, err
			}
		}
	}
	for _, name := range sampleTags {
		if err := db.InsertTag(ctx, model.Tag{ID: uuid.NewString(), Name: name, CreatedAt: stamp.Format(time.RFC3339Nano)}); err != nil {
			if !errors.As(err, new(store.ExistsError)) {
				return 0, err
			}
		}
	}

	today := model.DayOf(now)
	for i, st := range sampleTasks {
		// Spread creation times so newest-first ordering is stable.
		created := stamp.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339Nano)
		t := model.Task{
			ID:          uuid.NewString(),
			Title:       st.title,
			Description: model.OptString(st.description),
			Status:      st.status,
			Priority:    st.priority,
			List:        model.OptString(st.list),
			Tags:        st.tags,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if st.dueIn != nil {
			t.DueDate = model.Some(today.AddDays(*st.dueIn).String())
		}
		if err := db.InsertTask(ctx, t); err != nil {
			return i, err
		}
	}
	return len(sampleTasks), nil
}
