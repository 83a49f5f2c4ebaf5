package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Bhavnish15/taskoPro/models"
)

// Event is a tagged change notification carrying the full active-task
// snapshot at the time of the change.
type Event struct {
	Kind  string        `json:"kind"` // "snapshot" on first emit, "changed" after
	Tasks []models.Task `json:"tasks"`
	At    time.Time     `json:"at"`
}

// Watch polls the active catalog and emits an event whenever the active set
// or any row in it changes. It replaces push-style store listeners with an
// explicit polling boundary; the channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration, key SortKey) <-chan Event {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ch := make(chan Event, 1)
	go func() {
		defer close(ch)
		var last string
		first := true
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			tasks, err := s.ListActive(key)
			if err == nil {
				fp := fingerprint(tasks)
				if fp != last {
					kind := "changed"
					if first {
						kind = "snapshot"
					}
					ev := Event{Kind: kind, Tasks: tasks, At: time.Now()}
					select {
					case ch <- ev:
						last = fp
					case <-ctx.Done():
						return
					}
				}
				first = false
			}
			select {
			case <-tick.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func fingerprint(tasks []models.Task) string {
	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "%d:%s:%d:%d:%d:%v;", t.ID, t.Title, t.Reward, t.BaseDuration, t.RequiredVIPLevel, t.UpdatedAt.UnixNano())
	}
	return b.String()
}
