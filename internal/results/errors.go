package results

import "errors"

var (
	// ErrColumnNotFound indicates no header row in the file contained
	// the requested column.
	ErrColumnNotFound = errors.New("results: column not found")

	// ErrNoValues indicates the column existed but held no numeric data.
	ErrNoValues = errors.New("results: no numeric values in column")

	// ErrNoFiles indicates the folder held no data files to summarize.
	ErrNoFiles = errors.New("results: no data files in folder")

	// ErrNoRunFolder indicates no output folder matched the description.
	ErrNoRunFolder = errors.New("results: no run folder found")
)
