package hadith

import (
	"context"
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
)

var (
	ErrNotFound  = core.NewNotFoundError("hadith")
	errDuplicate = core.NewValidationError(nil, core.FieldError{Field: "number", Error: "this hadith number already exists in the collection"})
)

type (
	Repository interface {
		CreateHadith(ctx context.Context, h Hadith) (Hadith, error)
		GetHadith(ctx context.Context, id string) (Hadith, error)
		// GetHadithByNumber returns ErrNotFound when the collection has no such number.
		GetHadithByNumber(ctx context.Context, collection string, number int) (Hadith, error)
		// QueryHadiths applies AND operation on available QueryFilter fields.
		// QueryFilter.Q is a substring match on search_text. QueryFilter.Narrator is case-insensitive.
		QueryHadiths(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Hadith, error)
		UpdateHadith(ctx context.Context, h Hadith) (Hadith, error)
		DeleteHadithsByID(ctx context.Context, ids ...string) error
		// UpsertHadiths inserts or replaces hadiths by (collection, number) and returns how many were written.
		UpsertHadiths(ctx context.Context, hs []Hadith) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nh NewHadith) (Hadith, error)
		Get(ctx context.Context, id string) (Hadith, error)
		// Search runs a query, serving repeated ones from the cache.
		Search(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Hadith, error)
		Update(ctx context.Context, id string, uh UpdateHadith) (Hadith, error)
		Delete(ctx context.Context, ids ...string) error
		// Import validates then upserts every hadith. Nothing is written if one is invalid.
		Import(ctx context.Context, nhs []NewHadith) (int, error)
	}

	service struct {
		repo     Repository
		cache    core.Cache
		cacheTTL time.Duration
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, cache core.Cache, cacheTTL time.Duration, validate *validator.Validate, logger core.Logger) Service {
	return &service{repo: repo, cache: cache, cacheTTL: cacheTTL, validate: validate, logger: logger}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterOneOf(validate, translator, "hadithcollection", "unknown hadith collection", Collections)
	core.RegisterOneOf(validate, translator, "hadithgrade", "grade must be one of sahih, hasan, daif, mawdu", Grades)
}

func (svc *service) Create(ctx context.Context, nh NewHadith) (Hadith, error) {
	_, err := svc.repo.GetHadithByNumber(ctx, nh.Collection, nh.Number)
	switch {
	case err == nil:
		return Hadith{}, errDuplicate
	case !core.IsNotFound(err):
		return Hadith{}, errors.Wrap(err, "checking hadith number")
	}

	h := nh.toHadith()
	h.CreatedAt = core.NowFunc()
	h.UpdatedAt = h.CreatedAt
	h, err = svc.repo.CreateHadith(ctx, h)
	if err != nil {
		return Hadith{}, err
	}
	svc.invalidate(ctx)
	return h, nil
}

func (svc *service) Get(ctx context.Context, id string) (Hadith, error) {
	return svc.repo.GetHadith(ctx, id)
}

func searchKey(filter *QueryFilter, ordering []core.DBOrdering, page core.Page) string {
	ords := make([]string, 0, len(ordering))
	for _, o := range ordering {
		ords = append(ords, o.String())
	}
	return fmt.Sprintf("%ssearch:%s|%s|%s|%s|%s|%d|%d",
		core.CachePrefixHadith,
		filter.Q, filter.Collection, filter.Grade, strings.ToLower(filter.Narrator),
		strings.Join(ords, ","), page.Limit, page.Offset,
	)
}

func (svc *service) Search(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Hadith, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	page.Clean()
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "collection", Ascending: true}, {Field: "number", Ascending: true}}
	}

	key := searchKey(filter, ordering, page)
	var hs []Hadith
	found, err := svc.cache.Get(ctx, key, &hs)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("reading hadith cache: %v", err), err)
	}
	if found {
		return hs, nil
	}

	hs, err = svc.repo.QueryHadiths(ctx, filter, ordering, page)
	if err != nil {
		return nil, err
	}
	if err := svc.cache.Set(ctx, key, hs, svc.cacheTTL); err != nil {
		svc.logger.Warn(fmt.Sprintf("writing hadith cache: %v", err), err)
	}
	return hs, nil
}

func (svc *service) Update(ctx context.Context, id string, uh UpdateHadith) (Hadith, error) {
	h, err := svc.repo.GetHadith(ctx, id)
	if err != nil {
		return Hadith{}, err
	}
	uh.apply(&h)
	h.UpdatedAt = core.NowFunc()
	h, err = svc.repo.UpdateHadith(ctx, h)
	if err != nil {
		return Hadith{}, err
	}
	svc.invalidate(ctx)
	return h, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := svc.repo.DeleteHadithsByID(ctx, ids...); err != nil {
		return err
	}
	svc.invalidate(ctx)
	return nil
}

func (svc *service) Import(ctx context.Context, nhs []NewHadith) (int, error) {
	now := core.NowFunc()
	hs := make([]Hadith, 0, len(nhs))
	for i := range nhs {
		if err := nhs[i].Validate(svc.validate); err != nil {
			return 0, errors.Wrapf(err, "hadith #%d (%s %d)", i+1, nhs[i].Collection, nhs[i].Number)
		}
		h := nhs[i].toHadith()
		h.CreatedAt = now
		h.UpdatedAt = now
		hs = append(hs, h)
	}
	if len(hs) == 0 {
		return 0, nil
	}

	n, err := svc.repo.UpsertHadiths(ctx, hs)
	if err != nil {
		return 0, errors.Wrap(err, "upserting hadiths")
	}
	svc.invalidate(ctx)
	return n, nil
}

func (svc *service) invalidate(ctx context.Context) {
	if err := svc.cache.DeletePrefix(ctx, core.CachePrefixHadith); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating hadith cache: %v", err), err)
	}
}
