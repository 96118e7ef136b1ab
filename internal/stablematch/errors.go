package stablematch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched (errors.Is) by every *InvalidInputError.
	ErrInvalidInput = errors.New("stablematch: invalid input")
	// ErrAlreadyMatched is returned by MatchSet.Match when either element is taken.
	ErrAlreadyMatched = errors.New("stablematch: element already matched")
	// ErrNotMatched is returned by MatchSet.Unmatch when either element is free.
	ErrNotMatched = errors.New("stablematch: element not matched")
	// ErrNotPartners is returned by MatchSet.Unmatch for two matched elements
	// that are not matched to each other.
	ErrNotPartners = errors.New("stablematch: elements are not partners")
	// ErrIndexOutOfRange is returned for an element index outside its side.
	ErrIndexOutOfRange = errors.New("stablematch: index out of range")
)

// InvalidInputError reports a usage error: bad values, bad tolerance, or a
// proposer set larger than the acceptor set when that is not allowed.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "stablematch: invalid input: " + e.Reason
}

// Is lets errors.Is(err, ErrInvalidInput) succeed.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// BlockingPairError is returned by Verify when the matching is not stable:
// Proposer and Acceptor both prefer each other over their assignment.
type BlockingPairError struct {
	Proposer int
	Acceptor int
}

func (e *BlockingPairError) Error() string {
	return fmt.Sprintf("stablematch: blocking pair (proposer %d, acceptor %d)", e.Proposer, e.Acceptor)
}
