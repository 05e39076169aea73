// Package scheduler arms one timer per enabled alarm and turns it into an
// AlarmTriggered event at the right instant, exactly once per occurrence.
//
// Every armed timer carries a generation counter. Editing, disabling or
// deleting an alarm bumps the generation before the call returns, so a fire
// callback that was already queued by the runtime validates its captured
// generation and silently drops itself. A periodic resync loop catches
// timers whose targets slipped into the past (process suspend, clock
// adjustments) and routes them through the same generation-checked fire path.
package scheduler
