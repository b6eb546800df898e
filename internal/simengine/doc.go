// Package simengine provides an in-memory native engine that records every
// call made against it. It backs the CLI's offline renders and serves as the
// native side of the tests: it keeps the set of live native links, the
// automation calls issued per param, and a transcript of all calls in order.
//
// It performs no signal processing.
package simengine
