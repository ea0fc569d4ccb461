package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	ErrEmptyQuery  = goerr.New("query is empty")
	ErrNilActor    = goerr.New("actor is required")
	ErrNilDocument = goerr.New("document is required")
)
