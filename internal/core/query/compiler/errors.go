package compiler

import "errors"

var (
	ErrNilQuery          = errors.New("nil query")
	ErrUnsupportedClause = errors.New("unsupported clause type")
	ErrInvalidClause     = errors.New("invalid clause arguments")
	ErrDirectiveArity    = errors.New("directive count does not match value count")
	ErrDirectiveType     = errors.New("value does not match directive")
)
