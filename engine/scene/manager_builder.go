package scene

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(m *manager)

// WithUpdateWorkers sets how many scenes may update at once. Defaults to 1, which
// updates scenes in order on the calling goroutine.
//
// Parameters:
//   - n: the number of update workers (minimum 1)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithUpdateWorkers(n int) ManagerBuilderOption {
	return func(m *manager) {
		if n < 1 {
			n = 1
		}
		m.updateWorkers = n
	}
}
