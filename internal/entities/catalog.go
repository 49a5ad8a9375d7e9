package entities

import "time"

// Author is a catalog author. Books are linked through the book_authors join
// table; removing an author only removes its join rows.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name"`
	Email     *string   `gorm:"size:254" json:"email"`
	Bio       string    `gorm:"type:text" json:"bio"`
	BirthDate *Date     `json:"birth_date"`
	Books     []Book    `gorm:"many2many:book_authors;" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (a Author) String() string {
	return a.Name
}

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:200;not null" json:"title"`
	Authors         []Author  `gorm:"many2many:book_authors;" json:"authors"`
	ISBN            *string   `gorm:"index;size:13" json:"isbn"`
	PublicationDate *Date     `json:"publication_date"`
	Price           *Price    `gorm:"index" json:"price"`
	Genre           string    `gorm:"index;size:50" json:"genre"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (b Book) String() string {
	return b.Title
}

// AuthorNames returns the display names of the book's authors in their loaded order.
func (b Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.String())
	}
	return names
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

// BookAuthorsTable is the many-to-many join table between books and authors.
const BookAuthorsTable = "book_authors"
