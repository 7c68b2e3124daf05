package manifest

// Resolve orders calls so that every call comes after everything it
// depends on. Roots are visited in insertion order and dependencies in
// declared order, which keeps independent subgraphs in insertion order:
// identical input always yields identical output.
func Resolve(calls []Call) ([]Call, error) {
	index := make(map[string]int, len(calls))
	for i, call := range calls {
		index[call.ID] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(calls))
	order := make([]Call, 0, len(calls))

	var visit func(i int, stack []string) error
	visit = func(i int, stack []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return &CycleError{ID: calls[i].ID, Stack: append(stack, calls[i].ID)}
		}
		state[i] = visiting
		stack = append(stack, calls[i].ID)

		for _, dep := range calls[i].DependsOn {
			j, ok := index[dep]
			if !ok {
				return &NotFoundError{Kind: "dependency", Name: dep}
			}
			if err := visit(j, stack); err != nil {
				return err
			}
		}

		state[i] = done
		order = append(order, calls[i])
		return nil
	}

	for i := range calls {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
