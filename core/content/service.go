package content

import (
	"context"
	"fmt"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/user"
)

var (
	ErrNotFound     = core.NewNotFoundError("content")
	ErrNotEditable  = errors.Wrap(core.ErrInvalidTransition, "content can only be edited as draft or rejected")
	errNotesMissing = core.NewValidationError(nil, core.FieldError{Field: "notes", Error: "review notes are required when rejecting"})
)

type (
	Repository interface {
		CreateItem(ctx context.Context, it Item) (Item, error)
		// QueryItems applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of title, summary or body.
		// QueryFilter.Tag matches items carrying that tag.
		QueryItems(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Item, error)
		GetItem(ctx context.Context, id string) (Item, error)
		// UpdateItem saves it only while the stored status is still prevStatus,
		// and returns core.ErrInvalidTransition otherwise.
		UpdateItem(ctx context.Context, it Item, prevStatus string) (Item, error)
		IncrementViews(ctx context.Context, id string) (Item, error)
		DeleteItemsByID(ctx context.Context, ids ...string) error
		// PublishedTaxonomy lists the category and tags of every published item, optionally for one category.
		PublishedTaxonomy(ctx context.Context, category string) ([]Taxonomy, error)
	}

	Service interface {
		Create(ctx context.Context, ni NewItem, author user.User) (Item, error)
		// Get returns the item if viewer (nil for anonymous) may see it, ErrNotFound otherwise.
		Get(ctx context.Context, id string, viewer *user.User) (Item, error)
		Query(ctx context.Context, filter *QueryFilter, viewer *user.User, ordering []core.DBOrdering, page core.Page) ([]Item, error)
		Update(ctx context.Context, it Item, ui UpdateItem, by user.User) (Item, error)
		// Transition applies a workflow action. notes are kept as review notes by approve and reject.
		Transition(ctx context.Context, id string, action Action, by user.User, notes string) (Item, error)
		// View counts a view of the item and records it for signed-in viewers.
		View(ctx context.Context, id string, viewer *user.User) (Item, error)
		ToggleBookmark(ctx context.Context, id string, by user.User) (bool, error)
		Delete(ctx context.Context, ids ...string) error
		Taxonomy(ctx context.Context, category string) ([]Taxonomy, error)
	}

	service struct {
		repo        Repository
		usrSvc      user.Service
		activitySvc activity.Service
		mailSvc     core.EmailService
		cache       core.Cache
		logger      core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	usrSvc user.Service,
	activitySvc activity.Service,
	mailSvc core.EmailService,
	cache core.Cache,
	logger core.Logger,
) Service {
	return &service{
		repo:        repo,
		usrSvc:      usrSvc,
		activitySvc: activitySvc,
		mailSvc:     mailSvc,
		cache:       cache,
		logger:      logger,
	}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterOneOf(validate, translator, "contenttype", "invalid content type", Types)
	core.RegisterOneOf(validate, translator, "contentlang", "language must be one of ar, en", Languages)
}

func (svc *service) Create(ctx context.Context, ni NewItem, author user.User) (Item, error) {
	if !author.IsAuthor() {
		return Item{}, core.ErrForbidden
	}
	now := core.NowFunc()
	it := Item{
		Title:       ni.Title,
		Summary:     ni.Summary,
		Body:        ni.Body,
		ContentType: ni.ContentType,
		Category:    ni.Category,
		Tags:        ni.Tags,
		Language:    ni.Language,
		MediaURL:    ni.MediaURL,
		AuthorID:    author.ID,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return svc.repo.CreateItem(ctx, it)
}

func (svc *service) Get(ctx context.Context, id string, viewer *user.User) (Item, error) {
	it, err := svc.repo.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if !CanSee(viewer, it) {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, viewer *user.User, ordering []core.DBOrdering, page core.Page) ([]Item, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	filter.PublicOnly = viewer == nil || !viewer.IsEditor()
	filter.VisibleAuthorID = ""
	if filter.PublicOnly && viewer != nil {
		filter.VisibleAuthorID = viewer.ID
	}

	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "published_at"}, {Field: "created_at"}}
	}
	return svc.repo.QueryItems(ctx, filter, ordering, page)
}

func (svc *service) Update(ctx context.Context, it Item, ui UpdateItem, by user.User) (Item, error) {
	if !CanEdit(by, it) {
		return Item{}, core.ErrForbidden
	}
	if !it.IsEditable() {
		return Item{}, ErrNotEditable
	}
	ui.apply(&it)
	it.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateItem(ctx, it, it.Status)
}

func (svc *service) Transition(ctx context.Context, id string, action Action, by user.User, notes string) (Item, error) {
	it, err := svc.Get(ctx, id, &by)
	if err != nil {
		return Item{}, err
	}
	if !CanPerform(by, it, action) {
		return Item{}, core.ErrForbidden
	}
	next, err := NextStatus(it.Status, action)
	if err != nil {
		return Item{}, err
	}

	notes = core.CleanString(notes)
	now := core.NowFunc()
	switch action {
	case ActionApprove:
		it.ReviewerID = null.StringFrom(by.ID)
		it.ReviewNotes = notes
		it.PublishedAt = null.TimeFrom(now)
	case ActionReject:
		if notes == "" {
			return Item{}, errNotesMissing
		}
		it.ReviewerID = null.StringFrom(by.ID)
		it.ReviewNotes = notes
	}
	prev := it.Status
	it.Status = next
	it.UpdatedAt = now

	it, err = svc.repo.UpdateItem(ctx, it, prev)
	if err != nil {
		return Item{}, errors.Wrap(err, "saving transition")
	}

	if prev == StatusPublished || next == StatusPublished {
		svc.invalidateGraph(ctx)
	}
	svc.notify(ctx, it, action)
	return it, nil
}

func (svc *service) View(ctx context.Context, id string, viewer *user.User) (Item, error) {
	if _, err := svc.Get(ctx, id, viewer); err != nil {
		return Item{}, err
	}
	it, err := svc.repo.IncrementViews(ctx, id)
	if err != nil {
		return Item{}, errors.Wrap(err, "incrementing views")
	}
	if viewer != nil {
		if _, err := svc.activitySvc.Record(ctx, viewer.ID, activity.TypeView, activity.TargetContent, it.ID, nil); err != nil {
			svc.logger.Warn(fmt.Sprintf("recording view: %v", err), err, *viewer)
		}
	}
	return it, nil
}

func (svc *service) ToggleBookmark(ctx context.Context, id string, by user.User) (bool, error) {
	if _, err := svc.Get(ctx, id, &by); err != nil {
		return false, err
	}
	return svc.activitySvc.ToggleBookmark(ctx, by.ID, activity.TargetContent, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := svc.repo.DeleteItemsByID(ctx, ids...); err != nil {
		return err
	}
	svc.invalidateGraph(ctx)
	return nil
}

func (svc *service) Taxonomy(ctx context.Context, category string) ([]Taxonomy, error) {
	return svc.repo.PublishedTaxonomy(ctx, core.CleanString(category, true /* lower */))
}

func (svc *service) invalidateGraph(ctx context.Context) {
	if err := svc.cache.DeletePrefix(ctx, core.CachePrefixGraph); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating graph cache: %v", err), err)
	}
}

type mailData struct {
	Title      string
	AuthorName string
	ContentID  string
	Status     string
	Notes      string
}

// notify e-mails editors when an item awaits review and the author when it was reviewed.
func (svc *service) notify(ctx context.Context, it Item, action Action) {
	author, err := svc.usrSvc.GetByID(ctx, it.AuthorID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notify: finding author %s: %v", it.AuthorID, err), err)
		return
	}
	data := mailData{Title: it.Title, AuthorName: author.Name, ContentID: it.ID, Notes: it.ReviewNotes}

	switch action {
	case ActionSubmit:
		editors, err := svc.usrSvc.ActiveWithRoles(ctx, user.RoleEditor)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("notify: finding editors: %v", err), err)
			return
		}
		var msgs []*core.EmailMessage
		for _, ed := range editors {
			if ed.Email == "" || ed.ID == author.ID {
				continue
			}
			msgs = append(msgs, &core.EmailMessage{
				To:           []mail.Address{{Name: ed.Name, Address: ed.Email}},
				Subject:      "Content awaiting review",
				TemplateName: "content_review",
				TemplateData: data,
			})
		}
		if len(msgs) > 0 {
			svc.mailSvc.SendMessages(msgs...)
		}
	case ActionApprove, ActionReject:
		if author.Email == "" {
			return
		}
		data.Status = "approved"
		if action == ActionReject {
			data.Status = "rejected"
		}
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: author.Name, Address: author.Email}},
			Subject:      "Your submission was " + data.Status,
			TemplateName: "content_decision",
			TemplateData: data,
		})
	}
}
