package domain

import "errors"

// ErrRateLimited classifies provider failures caused by rate limiting or
// quota exhaustion. Only errors wrapping it are retried.
var ErrRateLimited = errors.New("rate limited")

// ErrRetryExhausted is returned once the retry budget for a rate-limited
// call has been spent.
var ErrRetryExhausted = errors.New("retry attempts exhausted")
