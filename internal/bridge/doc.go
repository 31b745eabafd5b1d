// Package bridge drives an asynchronous snapshot-producing engine on behalf of
// callers that only understand plain callbacks and blocking calls.
//
// It is structured into small files by concern:
//
//   - bridge.go: Bridge type, Config, constructor, availability and status.
//   - mode.go: the two call modes and their per-mode state.
//   - serializer.go: per-mode mutual exclusion around entry points.
//   - slot.go: Operation handles and the per-mode cancellation slot.
//   - respond.go: blocking mode (Respond, RespondContext).
//   - stream.go: streaming mode (StartStream) and StopStream.
//   - run.go: background task pumping snapshots into callbacks.
//   - callbacks.go, errors.go, validate.go: callback and error marshaling.
//   - events.go, metrics.go: lifecycle events and Prometheus metrics.
//
// Each mode owns one serializer and one slot. Blocking and Streaming calls may
// run at the same time; two calls of the same mode never overlap their
// synchronous section. Starting a new operation cancels the one already in the
// mode's slot. Cancellation is cooperative and checked once per snapshot; an
// operation that observes it stops silently, without a terminal callback.
package bridge
