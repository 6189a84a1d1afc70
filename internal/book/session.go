package book

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// SaveError indicates the book could not be written back to its store.
// Changes made during the session are lost.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("book: saving: %s", e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Session loads the book from store, runs fn, and saves the book on every
// exit from fn, including an error return or a panic. Errors from fn and from
// the save are both returned. The save ignores cancellation of ctx.
func Session(ctx context.Context, store Store, fn func(*AddressBook) error, opts ...Option) (err error) {
	b := New(store, opts...)
	if err := b.Load(ctx); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, b.Save(context.WithoutCancel(ctx)))
	}()
	return fn(b)
}
