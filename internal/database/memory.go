package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

// MemoryStore is a development and test Store. It mirrors the constraints of
// the Postgres schema: unique emails, unique subreddit names and one vote per
// user and subject.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.User
	subreddits map[string]models.Subreddit
	members    map[string]map[string]time.Time // subredditID -> userID -> joined
	moderators map[string]map[string]time.Time // subredditID -> userID -> granted
	posts      map[string]models.Post
	comments   map[string]models.Comment
	votes      map[models.SubjectKind]map[string]map[string]models.Vote // kind -> subjectID -> userID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]models.User),
		subreddits: make(map[string]models.Subreddit),
		members:    make(map[string]map[string]time.Time),
		moderators: make(map[string]map[string]time.Time),
		posts:      make(map[string]models.Post),
		comments:   make(map[string]models.Comment),
		votes: map[models.SubjectKind]map[string]map[string]models.Vote{
			models.SubjectPost:    make(map[string]map[string]models.Vote),
			models.SubjectComment: make(map[string]map[string]models.Vote),
		},
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func (s *MemoryStore) Health(context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{
		"status":  "up",
		"message": "in-memory store",
		"posts":   fmt.Sprintf("%d", len(s.posts)),
	}
}

func (s *MemoryStore) Close() error { return nil }

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", ErrNotFound)
}

// Subreddits

func (s *MemoryStore) nameTaken(name, exceptID string) bool {
	for _, sub := range s.subreddits {
		if sub.Name == name && sub.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateSubreddit(_ context.Context, sub *models.Subreddit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(sub.Name, "") {
		return fmt.Errorf("create subreddit: %w", ErrDuplicate)
	}
	if sub.ID == "" {
		sub.ID = models.NewID()
	}
	sub.CreatedAt = now()
	sub.UpdatedAt = sub.CreatedAt
	sub.MemberCount = 1
	s.subreddits[sub.ID] = *sub
	s.members[sub.ID] = map[string]time.Time{sub.CreatorID: sub.CreatedAt}
	s.moderators[sub.ID] = map[string]time.Time{sub.CreatorID: sub.CreatedAt}
	return nil
}

func (s *MemoryStore) subreddit(id string) (models.Subreddit, bool) {
	sub, ok := s.subreddits[id]
	if !ok {
		return sub, false
	}
	sub.MemberCount = int64(len(s.members[id]))
	if creator, ok := s.users[sub.CreatorID]; ok {
		sub.Creator = creator
	}
	return sub, true
}

func (s *MemoryStore) GetSubreddit(_ context.Context, id string) (*models.Subreddit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subreddit(id)
	if !ok {
		return nil, fmt.Errorf("get subreddit: %w", ErrNotFound)
	}
	return &sub, nil
}

func (s *MemoryStore) ListSubreddits(context.Context) ([]models.Subreddit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]models.Subreddit, 0, len(s.subreddits))
	for id := range s.subreddits {
		sub, _ := s.subreddit(id)
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

func (s *MemoryStore) UpdateSubreddit(_ context.Context, sub *models.Subreddit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.subreddits[sub.ID]
	if !ok {
		return fmt.Errorf("update subreddit: %w", ErrNotFound)
	}
	if s.nameTaken(sub.Name, sub.ID) {
		return fmt.Errorf("update subreddit: %w", ErrDuplicate)
	}
	stored.Name = sub.Name
	stored.Description = sub.Description
	stored.UpdatedAt = now()
	s.subreddits[sub.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteSubreddit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subreddits[id]; !ok {
		return fmt.Errorf("delete subreddit: %w", ErrNotFound)
	}
	for postID, p := range s.posts {
		if p.SubredditID == id {
			s.deletePost(postID)
		}
	}
	delete(s.members, id)
	delete(s.moderators, id)
	delete(s.subreddits, id)
	return nil
}

func addPair(set map[string]map[string]time.Time, subredditID, userID string) bool {
	users, ok := set[subredditID]
	if !ok {
		users = make(map[string]time.Time)
		set[subredditID] = users
	}
	if _, dup := users[userID]; dup {
		return false
	}
	users[userID] = now()
	return true
}

func removePair(set map[string]map[string]time.Time, subredditID, userID string) bool {
	users := set[subredditID]
	if _, ok := users[userID]; !ok {
		return false
	}
	delete(users, userID)
	return true
}

func (s *MemoryStore) AddMember(_ context.Context, subredditID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !addPair(s.members, subredditID, userID) {
		return fmt.Errorf("add member: %w", ErrDuplicate)
	}
	return nil
}

func (s *MemoryStore) RemoveMember(_ context.Context, subredditID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !removePair(s.members, subredditID, userID) {
		return fmt.Errorf("remove member: %w", ErrNotFound)
	}
	return nil
}

func (s *MemoryStore) IsMember(_ context.Context, subredditID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[subredditID][userID]
	return ok, nil
}

func (s *MemoryStore) AddModerator(_ context.Context, subredditID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !addPair(s.moderators, subredditID, userID) {
		return fmt.Errorf("add moderator: %w", ErrDuplicate)
	}
	return nil
}

func (s *MemoryStore) RemoveModerator(_ context.Context, subredditID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !removePair(s.moderators, subredditID, userID) {
		return fmt.Errorf("remove moderator: %w", ErrNotFound)
	}
	return nil
}

func (s *MemoryStore) IsModerator(_ context.Context, subredditID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.moderators[subredditID][userID]
	return ok, nil
}

func (s *MemoryStore) CountModerators(_ context.Context, subredditID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.moderators[subredditID])), nil
}

// Posts

func (s *MemoryStore) CreatePost(_ context.Context, post *models.Post, creatorVote models.VoteType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = models.NewID()
	}
	post.CreatedAt = now()
	post.UpdatedAt = post.CreatedAt

	vote := models.Vote{
		SubjectID: post.ID,
		UserID:    post.CreatorID,
		Direction: creatorVote,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.CreatedAt,
	}
	stored := *post
	stored.Votes = nil
	s.posts[post.ID] = stored
	s.votes[models.SubjectPost][post.ID] = map[string]models.Vote{vote.UserID: vote}

	post.Votes = []models.PostVote{{Vote: vote}}
	return nil
}

// post returns a stored post with its associations filled the way the gorm
// preloads fill them.
func (s *MemoryStore) post(id string) (models.Post, bool) {
	p, ok := s.posts[id]
	if !ok {
		return p, false
	}
	p.Creator = s.users[p.CreatorID]
	p.Subreddit, _ = s.subreddit(p.SubredditID)
	p.Votes = p.Votes[:0:0]
	for _, v := range s.votesFor(models.SubjectPost, id) {
		p.Votes = append(p.Votes, models.PostVote{Vote: v})
	}
	for _, c := range s.comments {
		if c.PostID == id {
			p.CommentCount++
		}
	}
	return p, true
}

func (s *MemoryStore) GetPost(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.post(id)
	if !ok {
		return nil, fmt.Errorf("get post: %w", ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) ListPosts(_ context.Context, filter PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, 0)
	for id, stored := range s.posts {
		switch {
		case filter.SubredditID != "":
			if stored.SubredditID != filter.SubredditID {
				continue
			}
		case filter.MemberID != "":
			if _, joined := s.members[stored.SubredditID][filter.MemberID]; !joined {
				continue
			}
		}
		if filter.CreatorID != "" && stored.CreatorID != filter.CreatorID {
			continue
		}
		p, _ := s.post(id)
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return fmt.Errorf("update post: %w", ErrNotFound)
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = now()
	s.posts[post.ID] = stored
	return nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("delete post: %w", ErrNotFound)
	}
	s.deletePost(id)
	return nil
}

func (s *MemoryStore) deletePost(id string) {
	for commentID, c := range s.comments {
		if c.PostID == id {
			delete(s.votes[models.SubjectComment], commentID)
			delete(s.comments, commentID)
		}
	}
	delete(s.votes[models.SubjectPost], id)
	delete(s.posts, id)
}

// Comments

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID == "" {
		comment.ID = models.NewID()
	}
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt
	stored := *comment
	stored.Votes = nil
	s.comments[comment.ID] = stored
	return nil
}

func (s *MemoryStore) comment(id string) (models.Comment, bool) {
	c, ok := s.comments[id]
	if !ok {
		return c, false
	}
	c.Creator = s.users[c.CreatorID]
	c.Votes = c.Votes[:0:0]
	for _, v := range s.votesFor(models.SubjectComment, id) {
		c.Votes = append(c.Votes, models.CommentVote{Vote: v})
	}
	return c, true
}

func (s *MemoryStore) GetComment(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comment(id)
	if !ok {
		return nil, fmt.Errorf("get comment: %w", ErrNotFound)
	}
	return &c, nil
}

func (s *MemoryStore) ListComments(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]models.Comment, 0)
	for id, stored := range s.comments {
		if stored.PostID != postID {
			continue
		}
		c, _ := s.comment(id)
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (s *MemoryStore) UpdateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[comment.ID]
	if !ok {
		return fmt.Errorf("update comment: %w", ErrNotFound)
	}
	stored.Content = comment.Content
	stored.UpdatedAt = now()
	s.comments[comment.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return fmt.Errorf("delete comment: %w", ErrNotFound)
	}
	delete(s.votes[models.SubjectComment], id)
	delete(s.comments, id)
	return nil
}

// Votes

func (s *MemoryStore) votesFor(kind models.SubjectKind, subjectID string) []models.Vote {
	byUser := s.votes[kind][subjectID]
	votes := make([]models.Vote, 0, len(byUser))
	for _, v := range byUser {
		votes = append(votes, v)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].UserID < votes[j].UserID })
	return votes
}

func (s *MemoryStore) SubjectExists(_ context.Context, kind models.SubjectKind, subjectID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case models.SubjectPost:
		_, ok := s.posts[subjectID]
		return ok, nil
	case models.SubjectComment:
		_, ok := s.comments[subjectID]
		return ok, nil
	}
	return false, fmt.Errorf("check subject: unknown kind %q", kind)
}

func (s *MemoryStore) FindVote(_ context.Context, kind models.SubjectKind, subjectID, userID string) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.votes[kind][subjectID][userID]
	if !ok {
		return nil, fmt.Errorf("find %s vote: %w", kind, ErrNotFound)
	}
	return &v, nil
}

func (s *MemoryStore) CreateVote(_ context.Context, kind models.SubjectKind, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySubject, ok := s.votes[kind]
	if !ok {
		return fmt.Errorf("create vote: unknown kind %q", kind)
	}
	byUser, ok := bySubject[vote.SubjectID]
	if !ok {
		byUser = make(map[string]models.Vote)
		bySubject[vote.SubjectID] = byUser
	}
	if _, dup := byUser[vote.UserID]; dup {
		return fmt.Errorf("create %s vote: %w", kind, ErrDuplicate)
	}
	vote.CreatedAt = now()
	vote.UpdatedAt = vote.CreatedAt
	byUser[vote.UserID] = *vote
	return nil
}

func (s *MemoryStore) UpdateVote(_ context.Context, kind models.SubjectKind, subjectID, userID string, direction models.VoteType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.votes[kind][subjectID][userID]
	if !ok {
		return fmt.Errorf("update %s vote: %w", kind, ErrNotFound)
	}
	v.Direction = direction
	v.UpdatedAt = now()
	s.votes[kind][subjectID][userID] = v
	return nil
}

func (s *MemoryStore) DeleteVote(_ context.Context, kind models.SubjectKind, subjectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byUser := s.votes[kind][subjectID]
	if _, ok := byUser[userID]; !ok {
		return fmt.Errorf("delete %s vote: %w", kind, ErrNotFound)
	}
	delete(byUser, userID)
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
