// Package events carries the engine's output events to interested consumers.
//
// The registry publishes alarms_changed after every mutation and the
// scheduler publishes alarm_triggered once per validated fire. The Bus fans
// events out to subscriptions with bounded buffers; a consumer that cannot
// keep up is dropped instead of stalling the engine.
package events
