// Package resilience groups the fault-tolerance helpers used around outbound
// HTTP: retry with exponential backoff and circuit breakers.
//
// The model client deliberately uses neither; its pacing belongs to the
// scoring orchestrator.
package resilience
