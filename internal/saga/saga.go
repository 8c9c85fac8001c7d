// Package saga runs a short ordered list of storage actions with
// compensating actions, standing in for the cross-statement transaction
// the persistence layer does not provide. Used by Menu creation
// (insert record, upload image, set key) and Instax image replacement
// (upload blob, archive old key, update record).
package saga

import "fmt"

type Step struct {
	Name string
	Run  func() error
	// Compensate undoes Run. Nil for steps with nothing to undo.
	Compensate func() error
}

// CompensationError records a compensator that itself failed while
// unwinding; the original step failure is still the primary error.
type CompensationError struct {
	Step string
	Err  error
}

// Execute runs steps in order. On the first failure every previously
// executed step's compensator runs in reverse order, then the failing
// step's error is returned. Compensator failures are reported through
// onCompensateErr (may be nil) and never mask the original error.
func Execute(steps []Step, onCompensateErr func(CompensationError)) error {
	for i, step := range steps {
		if err := step.Run(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].Compensate == nil {
					continue
				}
				if cerr := steps[j].Compensate(); cerr != nil && onCompensateErr != nil {
					onCompensateErr(CompensationError{Step: steps[j].Name, Err: cerr})
				}
			}
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
	}
	return nil
}
