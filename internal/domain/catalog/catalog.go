// Package catalog holds the immutable, title-queryable book catalog.
package catalog

import "github.com/kailas-cloud/bookrec/internal/domain/book"

// Catalog keeps books in input order and resolves titles to one representative.
// The representative of a title is the first book carrying it in input order.
type Catalog struct {
	books   []book.Book
	byISBN  map[string]int
	byTitle map[string]int
	titles  int
}

// New builds a catalog. Later books with an already-seen ISBN are ignored.
func New(books []book.Book) Catalog {
	c := Catalog{
		books:   make([]book.Book, 0, len(books)),
		byISBN:  make(map[string]int, len(books)),
		byTitle: make(map[string]int),
	}
	for i := range books {
		b := books[i]
		if _, dup := c.byISBN[b.ISBN()]; dup {
			continue
		}
		pos := len(c.books)
		c.books = append(c.books, b)
		c.byISBN[b.ISBN()] = pos
		if _, seen := c.byTitle[b.Title()]; !seen {
			c.byTitle[b.Title()] = pos
		}
	}
	c.titles = len(c.byTitle)
	return c
}

// ByISBN returns the book with the given identifier.
func (c *Catalog) ByISBN(isbn string) (book.Book, bool) {
	i, ok := c.byISBN[isbn]
	if !ok {
		return book.Book{}, false
	}
	return c.books[i], true
}

// ByTitle returns the representative book for a title (exact match).
func (c *Catalog) ByTitle(title string) (book.Book, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return book.Book{}, false
	}
	return c.books[i], true
}

// Len returns the number of distinct ISBNs.
func (c *Catalog) Len() int { return len(c.books) }

// TitleCount returns the number of distinct titles.
func (c *Catalog) TitleCount() int { return c.titles }

// Books returns a copy of all books in input order.
func (c *Catalog) Books() []book.Book {
	out := make([]book.Book, len(c.books))
	copy(out, c.books)
	return out
}
