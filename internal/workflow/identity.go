package workflow

import (
	"context"
	"math/rand/v2"
	"time"
)

// AnonymousSession is the session id used when the user has no token.
const AnonymousSession = "anonymous-session"

// sessionIDLength is how much of the session token is forwarded upstream.
const sessionIDLength = 32

// Blog ids are drawn from this range. They are not globally unique.
const (
	MinBlogID = 11111
	MaxBlogID = 99999
)

// User is the authenticated caller as seen by the workflow.
type User struct {
	ID           string
	SessionToken string
}

// Identity supplies the current user.
type Identity interface {
	CurrentUser() (User, error)
}

// StaticIdentity is an Identity that always returns the same user.
type StaticIdentity User

func (s StaticIdentity) CurrentUser() (User, error) {
	return User(s), nil
}

// SessionID derives the session id forwarded to every stage from the
// session token: its first 32 characters, or AnonymousSession.
func SessionID(token string) string {
	if token == "" {
		return AnonymousSession
	}
	if len(token) > sessionIDLength {
		return token[:sessionIDLength]
	}
	return token
}

// BlogIDGenerator produces the numeric id correlating the outline and
// final-article stages.
type BlogIDGenerator interface {
	NextBlogID() int
}

// BlogIDFunc adapts a function to BlogIDGenerator.
type BlogIDFunc func() int

func (f BlogIDFunc) NextBlogID() int {
	return f()
}

// RandomBlogIDs draws ids uniformly from [MinBlogID, MaxBlogID].
type RandomBlogIDs struct{}

func (RandomBlogIDs) NextBlogID() int {
	return MinBlogID + rand.IntN(MaxBlogID-MinBlogID+1)
}

// Article is the finished record handed to the content store.
type Article struct {
	WorkflowID      string
	UserID          string
	SessionID       string
	BlogID          int
	Keyword         string
	Title           string
	AlternateTitle  string
	Body            string
	MetaDescription string
	OutlineID       string
}

// Ack confirms a persisted article.
type Ack struct {
	ID       int64
	StoredAt time.Time
}

// ContentStore persists finished articles.
type ContentStore interface {
	Persist(ctx context.Context, a Article) (Ack, error)
}
