// Package events decouples services that request background work from the
// task machinery that performs it. Services emit TaskRequestEvents through
// an EventEmitter; handlers registered on the emitter turn those events
// into concrete tasks.
package events
