package sweep

import "errors"

// Domain errors for the sweep sequencer.
var (
	// ErrStageCount is returned when a combination's position count does
	// not match the motion session's stage count. Raised before any
	// motion or UI action.
	ErrStageCount = errors.New("sweep: combination width does not match stage count")

	// ErrWindowNotFound is returned when the acquisition application's
	// window cannot be located and foregrounded.
	ErrWindowNotFound = errors.New("sweep: acquisition window not found")

	// ErrDialogTimeout is returned when the save dialog does not appear
	// after engaging the file-tag control.
	ErrDialogTimeout = errors.New("sweep: save dialog did not appear")

	// ErrControlNotVisible is returned when a required control is absent
	// at a state-consistency checkpoint.
	ErrControlNotVisible = errors.New("sweep: control not visible")

	// ErrNoCombinations is returned when the table produced nothing to
	// sweep.
	ErrNoCombinations = errors.New("sweep: no combinations to run")
)
