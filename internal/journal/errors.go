package journal

import "errors"

// Common journal input errors. These are configuration/data errors: they
// abort the run before any output is produced.
var (
	// ErrUnsupportedFormat is returned for journal files that are neither
	// CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported journal file format")

	// ErrEmptyJournal is returned when the journal file has no data rows.
	ErrEmptyJournal = errors.New("journal file contains no data rows")

	// ErrMissingColumnMapping is returned when the ledger-columns template
	// lacks one of the required canonical keys.
	ErrMissingColumnMapping = errors.New("missing required keys in ledger columns template")

	// ErrMissingSourceColumn is returned when a mapped source column is
	// absent from the journal file.
	ErrMissingSourceColumn = errors.New("journal is missing required columns")

	// ErrNoCompany is returned when no non-empty company name or tax id can
	// be found in the journal.
	ErrNoCompany = errors.New("no company identity found in journal")

	// ErrNoDates is returned when the date column has no non-empty values.
	ErrNoDates = errors.New("journal date column has no non-empty values")

	// ErrBadDate is returned when a non-empty date cell matches neither the
	// ISO nor the EU date format.
	ErrBadDate = errors.New("unparsable value in journal date column")
)
