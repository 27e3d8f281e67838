package wallet

import "fmt"

// PathResolutionError indicates that a configured path could not be
// canonicalized into an absolute, existing directory.
type PathResolutionError struct {
	Path   string
	Reason string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("wallet directory %q %s", e.Path, e.Reason)
}

// DuplicateWalletError indicates that two configured wallet identifiers
// resolve to the same canonical path. Loading the same wallet twice would
// open two database environments over one set of files.
type DuplicateWalletError struct {
	// Name is the identifier as the operator wrote it.
	Name string

	// Path is the canonical path both identifiers resolve to.
	Path string
}

func (e *DuplicateWalletError) Error() string {
	return fmt.Sprintf("error loading wallet %s: duplicate wallet identifier", e.Name)
}

// VerificationError indicates the storage engine rejected a wallet during
// the pre-load verification pass.
type VerificationError struct {
	Name string
	Err  error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("error verifying wallet %q: %v", e.Name, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// MigrationOutcome reports what the legacy wallet migration did.
type MigrationOutcome int

const (
	// MigrationNotFirstRun means the sentinel file exists; nothing was attempted.
	MigrationNotFirstRun MigrationOutcome = iota

	// MigrationSourceMissing means no legacy wallet file exists to copy.
	MigrationSourceMissing

	// MigrationDestinationExists means a current-format wallet file already
	// occupies a default path; the legacy file was left untouched.
	MigrationDestinationExists

	// MigrationCopied means the legacy wallet file was copied into the
	// wallet directory.
	MigrationCopied

	// MigrationFailed means the copy was attempted and failed.
	MigrationFailed
)

func (o MigrationOutcome) String() string {
	switch o {
	case MigrationNotFirstRun:
		return "not first run"
	case MigrationSourceMissing:
		return "no legacy wallet"
	case MigrationDestinationExists:
		return "destination exists"
	case MigrationCopied:
		return "copied"
	case MigrationFailed:
		return "copy failed"
	default:
		return "unknown"
	}
}

// MigrationError indicates the legacy wallet copy failed.
type MigrationError struct {
	Source      string
	Destination string
	Err         error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("failed to copy legacy wallet %q to %q: %v", e.Source, e.Destination, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }
