package truss

import (
	"errors"
	"fmt"
)

// Model and solve sentinels. Wrapped with context where raised; callers
// match with errors.Is.
var (
	// ErrModelSize marks mismatched model slice lengths or an empty node set.
	ErrModelSize = errors.New("truss: invalid model size")

	// ErrNodeIndex marks an element endpoint outside the node range, or an
	// element connecting a node to itself.
	ErrNodeIndex = errors.New("truss: invalid node index")

	// ErrLoadSize marks a load case whose mask or force vector does not
	// match the model's DOF count.
	ErrLoadSize = errors.New("truss: invalid load case size")

	// ErrMechanism marks a singular reduced system: the free DOF set admits
	// rigid-body motion or an internal mechanism.
	ErrMechanism = errors.New("truss: mechanism detected")

	// ErrNotSolved marks result access before the first successful solve.
	ErrNotSolved = errors.New("truss: not solved")
)

// MechanismError carries the free DOF set of a singular reduced system.
// It unwraps to ErrMechanism.
type MechanismError struct {
	FreeDOFs []int // global indices of the free set that failed to factorize
}

func (e *MechanismError) Error() string {
	return fmt.Sprintf("truss: mechanism detected: stiffness over %d free DOFs is not positive definite", len(e.FreeDOFs))
}

func (e *MechanismError) Unwrap() error { return ErrMechanism }
