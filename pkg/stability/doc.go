// Package stability implements the readiness signal an application exposes
// while it has pending asynchronous work.
//
// A Signal is a stream of boolean observations. Subscribers receive the
// current value immediately and every subsequent Set, including repeated
// values. Tracker drives a Signal from a pending-task counter, and First
// waits for the first observation matching a predicate and then stops
// observing.
package stability
