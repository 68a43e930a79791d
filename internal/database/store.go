package database

import (
	"context"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

// Store is the persistence collaborator used by the services. Lookups return
// ErrNotFound for missing rows and inserts return ErrDuplicate when a unique
// constraint rejects the row.
type Store interface {
	Users
	Subreddits
	Posts
	Comments
	Votes

	Health(ctx context.Context) map[string]string
	Close() error
}

type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Subreddits interface {
	// CreateSubreddit stores the subreddit and makes its creator a member and
	// moderator in one transaction.
	CreateSubreddit(ctx context.Context, sub *models.Subreddit) error
	GetSubreddit(ctx context.Context, id string) (*models.Subreddit, error)
	ListSubreddits(ctx context.Context) ([]models.Subreddit, error)
	UpdateSubreddit(ctx context.Context, sub *models.Subreddit) error
	// DeleteSubreddit removes the subreddit with its posts, comments, votes,
	// members and moderators.
	DeleteSubreddit(ctx context.Context, id string) error

	AddMember(ctx context.Context, subredditID, userID string) error
	RemoveMember(ctx context.Context, subredditID, userID string) error
	IsMember(ctx context.Context, subredditID, userID string) (bool, error)

	AddModerator(ctx context.Context, subredditID, userID string) error
	RemoveModerator(ctx context.Context, subredditID, userID string) error
	IsModerator(ctx context.Context, subredditID, userID string) (bool, error)
	CountModerators(ctx context.Context, subredditID string) (int64, error)
}

// PostFilter selects posts of one subreddit, or when SubredditID is empty the
// posts of every subreddit MemberID has joined. CreatorID narrows either.
type PostFilter struct {
	SubredditID string
	MemberID    string
	CreatorID   string
}

type Posts interface {
	// CreatePost stores the post together with its creator's initial vote.
	CreatePost(ctx context.Context, post *models.Post, creatorVote models.VoteType) error
	// GetPost loads the post with its creator, subreddit, votes and comment count.
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	// DeletePost removes the post with its votes, comments and comment votes.
	DeletePost(ctx context.Context, id string) error
}

type Comments interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	// ListComments returns every comment of a post with creator and votes,
	// oldest first.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	// DeleteComment removes the comment and its votes. Replies are kept.
	DeleteComment(ctx context.Context, id string) error
}

// Votes is the uniqueness-constrained vote collection, addressed by subject kind.
type Votes interface {
	SubjectExists(ctx context.Context, kind models.SubjectKind, subjectID string) (bool, error)
	FindVote(ctx context.Context, kind models.SubjectKind, subjectID, userID string) (*models.Vote, error)
	CreateVote(ctx context.Context, kind models.SubjectKind, vote *models.Vote) error
	UpdateVote(ctx context.Context, kind models.SubjectKind, subjectID, userID string, direction models.VoteType) error
	DeleteVote(ctx context.Context, kind models.SubjectKind, subjectID, userID string) error
}
