// Package dispatch contains the scheduling core: candidate scoring, slot
// search and the coordinator that turns a service request into a technician
// assignment. All scoring and slot operations are pure functions of their
// inputs; the only externally observable mutation is the ticket write-back
// performed on a successful assignment.
package dispatch
