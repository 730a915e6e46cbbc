package fragment

// ChecksumUnavailable is reported as the checksum of a failed split.
const ChecksumUnavailable = "unavailable"

// Status is the outcome of a split or merge.
type Status int

// Status values.
const (
	StatusSuccess Status = iota
	StatusFailure
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusSuccess {
		return "SUCCESS"
	}
	return "FAILURE"
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SplitResult is the outcome of one split.
type SplitResult struct {
	fragments []Fragment
	checksum  string
	status    Status
	errs      []error
}

// NewSplitResult creates a successful SplitResult.
func NewSplitResult(fragments []Fragment, checksum string) SplitResult {
	f := make([]Fragment, len(fragments))
	copy(f, fragments)
	return SplitResult{fragments: f, checksum: checksum, status: StatusSuccess}
}

// FailedSplit creates a failed SplitResult carrying err. Fragments of a failed
// split are removed, so the result lists none.
func FailedSplit(err error) SplitResult {
	return SplitResult{checksum: ChecksumUnavailable, status: StatusFailure, errs: []error{err}}
}

// Fragments returns the fragments in ordinal order.
func (r SplitResult) Fragments() []Fragment {
	out := make([]Fragment, len(r.fragments))
	copy(out, r.fragments)
	return out
}

// Paths returns the fragment paths in ordinal order.
func (r SplitResult) Paths() []string {
	out := make([]string, len(r.fragments))
	for i, f := range r.fragments {
		out[i] = f.Path()
	}
	return out
}

// Checksum returns the source checksum, or ChecksumUnavailable on failure.
func (r SplitResult) Checksum() string { return r.checksum }

// Status returns the outcome.
func (r SplitResult) Status() Status { return r.status }

// Succeeded reports whether the split completed.
func (r SplitResult) Succeeded() bool { return r.status == StatusSuccess }

// Errors returns the collected errors.
func (r SplitResult) Errors() []error { return copyErrors(r.errs) }

// Messages returns the collected error messages.
func (r SplitResult) Messages() []string { return messages(r.errs) }

// Err returns the first collected error, or nil.
func (r SplitResult) Err() error { return firstError(r.errs) }

// MergeResult is the outcome of one merge.
type MergeResult struct {
	destination string
	status      Status
	errs        []error
}

// NewMergeResult creates a successful MergeResult.
func NewMergeResult(destination string) MergeResult {
	return MergeResult{destination: destination, status: StatusSuccess}
}

// FailedMerge creates a failed MergeResult carrying err.
func FailedMerge(err error) MergeResult {
	return MergeResult{status: StatusFailure, errs: []error{err}}
}

// Destination returns the merged file path. Empty unless the merge succeeded.
func (r MergeResult) Destination() string { return r.destination }

// Status returns the outcome.
func (r MergeResult) Status() Status { return r.status }

// Succeeded reports whether the merge completed and verified.
func (r MergeResult) Succeeded() bool { return r.status == StatusSuccess }

// Errors returns the collected errors.
func (r MergeResult) Errors() []error { return copyErrors(r.errs) }

// Messages returns the collected error messages.
func (r MergeResult) Messages() []string { return messages(r.errs) }

// Err returns the first collected error, or nil.
func (r MergeResult) Err() error { return firstError(r.errs) }

func copyErrors(errs []error) []error {
	out := make([]error, len(errs))
	copy(out, errs)
	return out
}

func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func firstError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
