// Package contract is the run-time half of design-by-contract: the
// condition checker that evaluates guard groups and raises typed
// violations, the per-receiver old-values table, and the deep-copy protocol
// old() snapshots rely on.
package contract
