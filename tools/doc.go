// Package tools describes the capabilities a model may call, coerces the model's
// positional parameters to the declared schema and dispatches calls to a Provider.
package tools
