// Package auth verifies the HS256 bearer tokens that identify the caller.
// The token subject carries the user's UUID; every ledger operation is
// scoped to that user.
package auth
