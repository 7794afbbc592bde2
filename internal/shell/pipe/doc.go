// Package pipe implements the in-memory byte channel that connects
// adjacent pipeline stages.
//
// Each pipe has exactly one producer (the upstream stage's output) and one
// consumer (the downstream stage's input). The producer appends immutable
// chunks; the consumer reads them back in order through a cursor, blocking
// when it has caught up. Once the producer side closes, reads drain any
// remaining data and then return end-of-stream without blocking, so a
// consumer is never left suspended on a finished stage.
//
// Wake discipline:
//   - Blocked reads queue in FIFO order.
//   - Each write wakes exactly one queued reader, oldest first.
//   - Close wakes through the same path, letting a blocked consumer
//     observe end-of-stream promptly.
//
// A single read never spans a chunk boundary. Callers that need max bytes
// must loop; in practice stages read in a loop until end-of-stream anyway.
package pipe
