package serializers

import (
	"github.com/samber/lo"

	"github.com/mrlokans/bookstore/internal/entities"
)

// Author is the representation of an author in every API response.
type Author struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Email     *string        `json:"email"`
	Bio       string         `json:"bio"`
	BirthDate *entities.Date `json:"birth_date"`
}

func NewAuthor(a entities.Author) Author {
	return Author{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Bio:       a.Bio,
		BirthDate: a.BirthDate,
	}
}

func NewAuthors(authors []entities.Author) []Author {
	return lo.Map(authors, func(a entities.Author, _ int) Author {
		return NewAuthor(a)
	})
}

// authorRules carries the format constraints checked by the validator.
type authorRules struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

// AuthorInput is a validated author payload. Nil fields were not supplied.
type AuthorInput struct {
	Name      *string
	Email     **string
	Bio       *string
	BirthDate **entities.Date
}

// DecodeAuthor validates a payload. The read-only id key is ignored.
func DecodeAuthor(p Payload, mode Mode) (*AuthorInput, error) {
	r := newFieldReader(p)
	in := &AuthorInput{}

	in.Name, _ = r.String("name", false)
	in.Email, _ = r.NullableString("email")
	in.Bio, _ = r.String("bio", true)
	in.BirthDate, _ = r.NullableDate("birth_date")

	rules := authorRules{Name: lo.FromPtr(in.Name)}
	if in.Email != nil {
		rules.Email = lo.FromPtr(*in.Email)
	}
	if err := checkStruct(rules, mode, r); err != nil {
		return nil, err
	}

	if err := r.errs.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// Apply copies the supplied fields onto author.
func (in *AuthorInput) Apply(author *entities.Author) {
	if in.Name != nil {
		author.Name = *in.Name
	}
	if in.Email != nil {
		author.Email = *in.Email
	}
	if in.Bio != nil {
		author.Bio = *in.Bio
	}
	if in.BirthDate != nil {
		author.BirthDate = *in.BirthDate
	}
}
