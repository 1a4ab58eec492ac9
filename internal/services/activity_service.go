package services

import (
	"context"
	"time"

	"creativehub/internal/domain"
	applog "creativehub/internal/log"
	"creativehub/internal/repos"
	"creativehub/internal/session"

	"github.com/google/uuid"
)

type ActivityService struct {
	Repo *repos.ActivityRepo
}

func (s *ActivityService) Record(ctx context.Context, userID, action, detail string) error {
	return s.Repo.Record(ctx, domain.Activity{ID: uuid.NewString(), UserID: userID, Action: action, Detail: detail})
}

// OnSession is a session.Context subscriber that writes sign-in, sign-up and
// sign-out to the activity log.
func (s *ActivityService) OnSession(e session.Event) {
	if e.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	action := "auth." + string(e.Kind)
	if err := s.Record(ctx, e.User.ID, action, e.User.Email); err != nil {
		applog.Event("activity.record", err, map[string]any{"action": action})
	}
}
