package tape

// Options configures Play and Primitivize.
type Options struct {
	// PanicOnError stops execution immediately on the first Call that fails
	// to invoke, the default. When false, Play attaches the error to the
	// failing operation's value as an error ("continue on error" mode)
	// instead of aborting the whole tape.
	PanicOnError bool

	// Primitivize controls whether Primitivize, after splicing in a traced
	// body, walks into the spliced-in operations and inlines their
	// non-primitive calls as well. Play does not read it.
	Primitivize bool

	// AssertBranches: when set, Play fails a Call marked BranchCond whose
	// freshly computed value disagrees with the value it already carried
	// (from the original trace, or from a prior Play), rather than silently
	// continuing past a rewritten tape that no longer matches the control
	// flow it was recorded under.
	AssertBranches bool

	// TraceLoops is consulted by internal/reftracer to decide whether to
	// record a while loop as a structural Loop op or unroll it at trace
	// time; the core interpreter itself doesn't read it; it exists here so
	// a single Options value configures both tracing and execution for a
	// caller that wants the two toggles to agree.
	TraceLoops bool
}

// DefaultOptions returns the options Play uses when none are given:
// panic-on-error, no implicit primitivization.
func DefaultOptions() Options {
	return Options{PanicOnError: true, TraceLoops: true}
}
