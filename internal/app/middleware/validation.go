package middleware

import (
	"context"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/queries"
)

// Validator checks struct tags; see validation.Validator.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// CrossFieldValidator is implemented by messages with rules spanning several
// fields, such as a coordinate pair given by halves. It runs after the tags pass.
type CrossFieldValidator interface {
	Validate() error
}

// Validation rejects invalid commands before any lock or transaction is taken.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := validate(ctx, v, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := validate(ctx, v, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}

func validate(ctx context.Context, v Validator, message any) error {
	if err := v.Validate(ctx, message); err != nil {
		return err
	}
	if cf, ok := message.(CrossFieldValidator); ok {
		return cf.Validate()
	}
	return nil
}
