package picks

import "errors"

// ErrInvalidPick reports a pick file entry that is not a whole number of rounds.
var ErrInvalidPick = errors.New("invalid pick")
