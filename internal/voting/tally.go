package voting

import "github.com/emilythestrangee/subreddits/backend/internal/models"

// Ballot is satisfied by the post and comment vote rows.
type Ballot interface {
	Ballot() models.Vote
}

// Tally is the number of UP votes minus the number of DOWN votes.
func Tally[B Ballot](votes []B) int {
	total := 0
	for _, b := range votes {
		total += b.Ballot().Direction.Weight()
	}
	return total
}

// UserVote returns userID's direction among votes, or nil when the user has
// not voted or is anonymous.
func UserVote[B Ballot](votes []B, userID string) *models.VoteType {
	if userID == "" {
		return nil
	}
	for _, b := range votes {
		v := b.Ballot()
		if v.UserID == userID {
			dir := v.Direction
			return &dir
		}
	}
	return nil
}
