package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
)

// Activity types
const (
	TypeView          = "view"
	TypeBookmark      = "bookmark"
	TypeQuizCompleted = "quiz_completed"
)

// Target types
const (
	TargetContent = "content"
	TargetQuiz    = "quiz"
	TargetHadith  = "hadith"
)

var (
	Types       = []string{TypeView, TypeBookmark, TypeQuizCompleted}
	TargetTypes = []string{TargetContent, TargetQuiz, TargetHadith}

	ErrNotFound = core.NewNotFoundError("activity")
	// ErrAlreadyBookmarked is returned by Repository.CreateActivity for a second bookmark of the same target.
	ErrAlreadyBookmarked = errors.New("already bookmarked")
)

// Activity is a row of user_activities.
type Activity struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	TargetType   string    `json:"target_type"`
	TargetID     string    `json:"target_id"`
	Metadata     null.JSON `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
}

type QueryFilter struct {
	UserID       string
	ActivityType string
	TargetType   string
	TargetID     string
}

type (
	Repository interface {
		CreateActivity(ctx context.Context, a Activity) (Activity, error)
		// FindActivity returns the latest activity matching every field of filter, or ErrNotFound.
		FindActivity(ctx context.Context, filter QueryFilter) (Activity, error)
		// QueryActivities returns matching activities, newest first.
		QueryActivities(ctx context.Context, filter QueryFilter, page core.Page) ([]Activity, error)
		DeleteActivity(ctx context.Context, id string) error
	}

	Service interface {
		Record(ctx context.Context, userID, activityType, targetType, targetID string, metadata map[string]interface{}) (Activity, error)
		// ToggleBookmark adds or removes a bookmark and returns whether the target is now bookmarked.
		ToggleBookmark(ctx context.Context, userID, targetType, targetID string) (bool, error)
		IsBookmarked(ctx context.Context, userID, targetType, targetID string) (bool, error)
		ListByUser(ctx context.Context, userID string, filter QueryFilter, page core.Page) ([]Activity, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func checkKinds(activityType, targetType string) error {
	var flds []core.FieldError
	if !core.StringInSlice(activityType, Types) {
		flds = append(flds, core.FieldError{Field: "activity_type", Error: "invalid activity type"})
	}
	if !core.StringInSlice(targetType, TargetTypes) {
		flds = append(flds, core.FieldError{Field: "target_type", Error: "invalid target type"})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (svc *service) Record(ctx context.Context, userID, activityType, targetType, targetID string, metadata map[string]interface{}) (Activity, error) {
	if err := checkKinds(activityType, targetType); err != nil {
		return Activity{}, err
	}
	a := Activity{
		UserID:       userID,
		ActivityType: activityType,
		TargetType:   targetType,
		TargetID:     targetID,
		CreatedAt:    core.NowFunc(),
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return Activity{}, errors.Wrap(err, "encoding metadata")
		}
		a.Metadata = null.JSONFrom(raw)
	}
	return svc.repo.CreateActivity(ctx, a)
}

func (svc *service) ToggleBookmark(ctx context.Context, userID, targetType, targetID string) (bool, error) {
	if err := checkKinds(TypeBookmark, targetType); err != nil {
		return false, err
	}
	existing, err := svc.repo.FindActivity(ctx, QueryFilter{
		UserID:       userID,
		ActivityType: TypeBookmark,
		TargetType:   targetType,
		TargetID:     targetID,
	})
	switch {
	case err == nil:
		if err := svc.repo.DeleteActivity(ctx, existing.ID); err != nil {
			return false, errors.Wrap(err, "removing bookmark")
		}
		return false, nil
	case errors.Cause(err) == ErrNotFound:
		_, err := svc.Record(ctx, userID, TypeBookmark, targetType, targetID, nil)
		if err != nil && errors.Cause(err) != ErrAlreadyBookmarked {
			return false, errors.Wrap(err, "adding bookmark")
		}
		return true, nil
	default:
		return false, errors.Wrap(err, "finding bookmark")
	}
}

func (svc *service) IsBookmarked(ctx context.Context, userID, targetType, targetID string) (bool, error) {
	_, err := svc.repo.FindActivity(ctx, QueryFilter{
		UserID:       userID,
		ActivityType: TypeBookmark,
		TargetType:   targetType,
		TargetID:     targetID,
	})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *service) ListByUser(ctx context.Context, userID string, filter QueryFilter, page core.Page) ([]Activity, error) {
	filter.UserID = userID
	filter.ActivityType = core.CleanString(filter.ActivityType, true /* lower */)
	filter.TargetType = core.CleanString(filter.TargetType, true /* lower */)
	return svc.repo.QueryActivities(ctx, filter, page)
}
