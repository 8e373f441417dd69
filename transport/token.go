package transport

import (
	"math"

	"github.com/pkg/errors"
)

// Token identifies a registered handle in [Event]s.
type Token uint64

const (
	// ListenerToken is reserved for the listening socket and never allocated.
	ListenerToken Token = 0

	// DefaultTokenLimit is the largest token allocated before wrapping back to 1.
	DefaultTokenLimit Token = math.MaxUint64 - 2
)

// ErrTokensExhausted means every allocatable token is in use at once.
// That is either a connection leak or load far beyond design,
// so callers should treat it as fatal rather than queue connections.
var ErrTokensExhausted = errors.New("tokens exhausted")

// NextToken finds the first token after last which is not in used.
// Tokens range over [1, limit] and the search wraps around after limit.
// If it gets back to last without finding one, it returns [ErrTokensExhausted].
func NextToken(used map[Token]struct{}, last, limit Token) (Token, error) {
	if limit == ListenerToken {
		return 0, errors.New("token limit must be positive")
	}

	start := last
	if start == ListenerToken || start > limit {
		// Make the first probe land on 1.
		start = limit
	}

	next := start
	for {
		if next >= limit {
			next = 1
		} else {
			next++
		}

		if _, found := used[next]; !found {
			return next, nil
		}

		if next == start {
			return 0, ErrTokensExhausted
		}
	}
}

// TokenTable tracks tokens of open connections.
// It is not safe for concurrent use. The event loop is its only user.
type TokenTable struct {
	used  map[Token]struct{}
	last  Token
	limit Token
}

type TokenOptions struct {
	// Limit is the largest allocatable token. Zero means [DefaultTokenLimit].
	Limit Token
}

func NewTokenTable(opts TokenOptions) *TokenTable {
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultTokenLimit
	}

	return &TokenTable{
		used:  make(map[Token]struct{}),
		limit: limit,
	}
}

// Allocate reserves a token that no open connection holds.
func (t *TokenTable) Allocate() (Token, error) {
	token, err := NextToken(t.used, t.last, t.limit)
	if err != nil {
		return 0, errors.Wrapf(err, "allocating token (%d in use)", len(t.used))
	}

	t.used[token] = struct{}{}
	t.last = token

	return token, nil
}

// Release makes token available again. Releasing a free token is a no-op.
func (t *TokenTable) Release(token Token) { delete(t.used, token) }

func (t *TokenTable) InUse(token Token) bool {
	_, found := t.used[token]
	return found
}

func (t *TokenTable) Len() int { return len(t.used) }
