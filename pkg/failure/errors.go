package failure

type Severity int

// crawler control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}

// Retryable is implemented by errors that distinguish transient from permanent failures.
type Retryable interface {
	IsRetryable() bool
}

// IsFatal reports whether err must terminate the run.
func IsFatal(err ClassifiedError) bool {
	return err != nil && err.Severity() == SeverityFatal
}
