// Package events defines the events emitted on the event bus once a
// production plan request has been handled.
//
// Available event types:
//   - PlanEvent: outcome of one production plan calculation
package events
