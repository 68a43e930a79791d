// Package comments turns the flat comment rows of a post into a reply tree.
package comments

import (
	"time"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/voting"
)

// Node is a comment as shown to one viewer.
type Node struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	PostID    string           `json:"post_id"`
	ParentID  *string          `json:"parent_id,omitempty"`
	Creator   models.UserRef   `json:"creator"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	UserVote  *models.VoteType `json:"user_vote"`
	VoteCount int              `json:"vote_count"`
	Replies   []*Node          `json:"replies"`
}

// NewNode annotates a single comment for viewerID.
func NewNode(c models.Comment, viewerID string) *Node {
	return &Node{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Creator:   c.Creator.Ref(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		UserVote:  voting.UserVote(c.Votes, viewerID),
		VoteCount: voting.Tally(c.Votes),
		Replies:   []*Node{},
	}
}

// BuildTree links rows into a forest in two passes. Roots and replies keep
// the order of rows. A row whose parent is not among rows, or is itself, is
// returned as a root.
func BuildTree(rows []models.Comment, viewerID string) []*Node {
	nodes := make([]Node, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		nodes[i] = *NewNode(row, viewerID)
		index[row.ID] = i
	}

	roots := make([]*Node, 0)
	for i := range nodes {
		n := &nodes[i]
		if n.ParentID != nil && *n.ParentID != n.ID {
			if p, ok := index[*n.ParentID]; ok {
				nodes[p].Replies = append(nodes[p].Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
