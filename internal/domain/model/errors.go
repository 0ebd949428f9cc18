package model

import "errors"

// ErrDataConsistency marks malformed bracket input: a slot or team that has
// no row in the forecast table, or an assignment that references an unknown
// team or an out-of-range round. It is never recoverable locally.
var ErrDataConsistency = errors.New("data consistency error")
