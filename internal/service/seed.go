package service

import "github.com/okatkov/taskpad/internal/core"

// SeedTasks builds the fixed first-run task set written into an empty
// store, so a fresh deployment does not greet the user with nothing.
func SeedTasks(idGen IDGenerator) ([]*core.Task, error) {
	seeds := []struct {
		title string
		done  bool
	}{
		{"walk the dog", false},
		{"wash dishes", false},
		{"drink coffee", true},
	}

	res := make([]*core.Task, 0, len(seeds))
	for _, s := range seeds {
		id, err := idGen.NewID()
		if err != nil {
			return nil, err
		}
		t := core.NewTask(id, s.title)
		t.IsDone = s.done
		res = append(res, t)
	}
	return res, nil
}
