package indexer

const defaultProgressEvery = 1 << 16

type options struct {
	progress      func(Stats)
	progressEvery int64
}

// Option configures Build.
type Option func(*options)

// WithProgress calls fn with the running Stats every `every` records.
// every <= 0 selects a default of 65536.
func WithProgress(every int64, fn func(Stats)) Option {
	return func(o *options) {
		if every <= 0 {
			every = defaultProgressEvery
		}
		o.progress = fn
		o.progressEvery = every
	}
}
