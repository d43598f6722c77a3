// Package memory provides mutex-guarded in-memory repositories with the
// same contracts as the Postgres ones. They back the test suites and the
// -memory development mode.
package memory

import "context"

// TxRunner satisfies the checkout transaction port for stores that have no
// real transactions. The repositories here apply each write atomically, so
// running the function directly preserves the contract for tests; partial
// effects of a failed "transaction" are visible, which the compensation
// path is designed to tolerate.
type TxRunner struct{}

func (TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
