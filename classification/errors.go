package classification

import "github.com/growthlab/atlas/errors"

// Sentinel errors for invalid aggregation-mapping arguments.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrEqualLevels indicates an aggregation mapping was requested from a
	// level to itself
	ErrEqualLevels = errors.New("from and to levels are equal")

	// ErrBackwardLevels indicates the from level is coarser than the to
	// level (the arguments were likely swapped)
	ErrBackwardLevels = errors.New("from level is coarser than to level")

	// ErrUnknownLevel indicates a level name that is not part of the
	// classification
	ErrUnknownLevel = errors.New("unknown level")
)

func newUnknownLevel(level string, levels []string) error {
	return errors.WithDetailf(
		errors.Wrapf(ErrUnknownLevel, "level %q", level),
		"known levels: %v", levels)
}

func newEqualLevels(level string) error {
	return errors.Wrapf(ErrEqualLevels, "level %q", level)
}

func newBackwardLevels(fromLevel, toLevel string) error {
	return errors.WithHint(
		errors.Wrapf(ErrBackwardLevels, "from %q to %q", fromLevel, toLevel),
		"did you specify the levels backwards?")
}
