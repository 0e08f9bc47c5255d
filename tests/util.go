// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/event"
	"github.com/ilmhub/ilm/core/group"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/quiz"
	"github.com/ilmhub/ilm/core/user"
)

// NewConfig returns the default configuration in test mode, without request logs nor rate limiting.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false
	conf.Server.DisableReqLogs = true
	conf.Server.RateLimitRPS = 0
	conf.Calendar.Adjustment = 0
	return conf
}

// NewValidator returns a validator with every domain's tags registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	job.InitValidators(validate, translator)
	group.InitValidators(validate, translator)
	content.InitValidators(validate, translator)
	quiz.InitValidators(validate, translator)
	hadith.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateItem stores a content item directly in status.
func CreateItem(
	t *testing.T,
	repo content.Repository,
	title, category string,
	tags []string,
	author user.User,
	status string,
) content.Item {
	now := time.Now().UTC()
	it := content.Item{
		Title:       title,
		ContentType: content.TypeArticle,
		Category:    category,
		Tags:        tags,
		Language:    "ar",
		AuthorID:    author.ID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == content.StatusPublished {
		it.PublishedAt = null.TimeFrom(now)
	}
	it, err := repo.CreateItem(context.Background(), it)
	if err != nil {
		t.Fatalf("CreateItem() failed: %v", err)
	}
	return it
}
