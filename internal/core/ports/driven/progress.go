package driven

// ProgressReporter observes a sync run. It is purely observational: its
// methods return nothing and must not block the run.
type ProgressReporter interface {
	// Total sets the denominator once at run start.
	Total(n int)

	// Advance adds by to the processed count and refreshes the display.
	Advance(by int)

	// Finish finalises the display at run end, successful or not.
	Finish()
}
