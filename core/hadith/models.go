package hadith

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ilmhub/ilm/core"
)

// Collections
const (
	CollectionBukhari  = "bukhari"
	CollectionMuslim   = "muslim"
	CollectionAbuDawud = "abu_dawud"
	CollectionTirmidhi = "tirmidhi"
	CollectionNasai    = "nasai"
	CollectionIbnMajah = "ibn_majah"
	CollectionMalik    = "malik"
	CollectionAhmad    = "ahmad"
)

// Grades
const (
	GradeSahih = "sahih"
	GradeHasan = "hasan"
	GradeDaif  = "daif"
	GradeMawdu = "mawdu"
)

var (
	Collections = []string{
		CollectionBukhari, CollectionMuslim, CollectionAbuDawud, CollectionTirmidhi,
		CollectionNasai, CollectionIbnMajah, CollectionMalik, CollectionAhmad,
	}
	Grades = []string{GradeSahih, GradeHasan, GradeDaif, GradeMawdu}
)

// Hadith is a row of hadiths.
type Hadith struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	Book        string    `json:"book"`
	Chapter     string    `json:"chapter"`
	Number      int       `json:"number"`
	ArabicText  string    `json:"arabic_text"`
	Translation string    `json:"translation"`
	Narrator    string    `json:"narrator"`
	Grade       string    `json:"grade"`
	SearchText  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewHadith struct {
	Collection  string `json:"collection" validate:"required,hadithcollection"`
	Book        string `json:"book" validate:"max=300"`
	Chapter     string `json:"chapter" validate:"max=300"`
	Number      int    `json:"number" validate:"required,min=1"`
	ArabicText  string `json:"arabic_text" validate:"required,notblank"`
	Translation string `json:"translation"`
	Narrator    string `json:"narrator" validate:"max=200"`
	Grade       string `json:"grade" validate:"required,hadithgrade"`
}

func (nh *NewHadith) clean() {
	nh.Collection = core.CleanString(nh.Collection, true /* lower */)
	nh.Book = core.CleanString(nh.Book)
	nh.Chapter = core.CleanString(nh.Chapter)
	nh.ArabicText = core.CleanString(nh.ArabicText)
	nh.Translation = core.CleanString(nh.Translation)
	nh.Narrator = core.CleanString(nh.Narrator)
	nh.Grade = core.CleanString(nh.Grade, true /* lower */)
}

func (nh *NewHadith) Validate(validate *validator.Validate) error {
	nh.clean()
	return validate.Struct(nh)
}

func (nh NewHadith) toHadith() Hadith {
	h := Hadith{
		Collection:  nh.Collection,
		Book:        nh.Book,
		Chapter:     nh.Chapter,
		Number:      nh.Number,
		ArabicText:  nh.ArabicText,
		Translation: nh.Translation,
		Narrator:    nh.Narrator,
		Grade:       nh.Grade,
	}
	h.SearchText = searchText(h)
	return h
}

// UpdateHadith holds the fields to change. Nil fields are left untouched.
type UpdateHadith struct {
	Book        *string `json:"book" validate:"omitempty,max=300"`
	Chapter     *string `json:"chapter" validate:"omitempty,max=300"`
	ArabicText  *string `json:"arabic_text" validate:"omitempty,notblank"`
	Translation *string `json:"translation"`
	Narrator    *string `json:"narrator" validate:"omitempty,max=200"`
	Grade       *string `json:"grade" validate:"omitempty,hadithgrade"`
}

func (uh *UpdateHadith) Validate(validate *validator.Validate) error {
	if uh.Grade != nil {
		g := core.CleanString(*uh.Grade, true /* lower */)
		uh.Grade = &g
	}
	return validate.Struct(uh)
}

func (uh UpdateHadith) apply(h *Hadith) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = core.CleanString(*src)
		}
	}
	set(&h.Book, uh.Book)
	set(&h.Chapter, uh.Chapter)
	set(&h.ArabicText, uh.ArabicText)
	set(&h.Translation, uh.Translation)
	set(&h.Narrator, uh.Narrator)
	set(&h.Grade, uh.Grade)
	h.SearchText = searchText(*h)
}

type QueryFilter struct {
	// Q is matched against the normalized search text.
	Q          string
	Collection string
	Grade      string
	Narrator   string
}

func (qf *QueryFilter) Clean() {
	qf.Q = Normalize(qf.Q)
	qf.Collection = core.CleanString(qf.Collection, true /* lower */)
	qf.Grade = core.CleanString(qf.Grade, true /* lower */)
	qf.Narrator = core.CleanString(qf.Narrator)
}

var OrderingFields = []string{"collection", "number", "grade", "created_at"}
