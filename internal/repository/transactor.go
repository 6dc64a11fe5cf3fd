package repository

import "context"

// Transactor runs a function inside one database transaction. Repository
// calls made with the context it passes to fn join that transaction, so a
// service can compose several repository calls into one atomic mutation.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
