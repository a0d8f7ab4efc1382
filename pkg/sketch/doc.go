// Package sketch implements a Count-Sketch: a depth x width grid of signed
// counters that estimates how often an item appeared in a stream using memory
// that does not grow with the stream.
//
// Each row hashes an item to one bucket and one sign. Updates add sign*weight
// to that bucket in every row. Estimates read the same cells back, undo the
// sign and return the median across rows. For an even depth the median is the
// upper-middle value (index depth/2 after sorting). The two values are not averaged.
//
// Rows use two independently seeded calls into one mixing hash. That
// approximates the 4-wise independent family the error bounds are proved for.
// It does not implement one. Callers that need the formal guarantee should
// supply their own StrongFunc via WithStrongHash.
//
// A CountSketch has no internal locking. Concurrent estimates are fine.
// Updates need external mutual exclusion, see the stream package.
package sketch
