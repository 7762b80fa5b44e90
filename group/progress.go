package group

type (
	// ProgressFollower receives progress reports from Generate, which may run for minutes at
	// large sizes. StepStart is called at the start of each search, Tick once per candidate
	// tried, and StepDone when the search ends, whether it succeeded or not.
	ProgressFollower interface {
		StepStart(desc string, intermediates int)
		Tick()
		StepDone()
	}

	EmptyFollower struct{}
)

func (*EmptyFollower) StepStart(_ string, _ int) {}
func (*EmptyFollower) Tick()                     {}
func (*EmptyFollower) StepDone()                 {}

// WithFollower reports the progress of Generate to f.
func WithFollower(f ProgressFollower) Option {
	return func(o *options) {
		if f != nil {
			o.follower = f
		}
	}
}
