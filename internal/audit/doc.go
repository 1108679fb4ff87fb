// Package audit buffers session-layer audit events and relays them to a sink on a
// background goroutine.
//
// # Components
//
//   - [Sink] is the consumer interface; [ChannelSink], [JSONWriterSink] and
//     [NoOpSink] are the bundled implementations.
//   - [Dispatcher] is the buffered relay. With DropIfFull it never blocks the
//     caller and counts what it dropped.
//
// # What this package must NOT do
//
//   - Decide which events are emitted; the engine does.
//   - Import goGate or any sibling internal package.
package audit
