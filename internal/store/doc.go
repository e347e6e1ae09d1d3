// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the ledger rules to remain
// independent of specific database technologies or persistence details.
//
// The completion ledger is the source of truth; the user stats row is a
// derived cache that is only ever written in the same transaction as the
// ledger change it reflects.
package store
