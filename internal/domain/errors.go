package domain

import "errors"

// ErrPersistence marks ledger read/write failures. These are fatal for a run:
// the dedup guarantee cannot be honored silently.
var ErrPersistence = errors.New("ledger persistence failure")

// ErrConfiguration marks a missing required credential or parameter,
// detected at startup before any adapter runs.
var ErrConfiguration = errors.New("configuration incomplete")
