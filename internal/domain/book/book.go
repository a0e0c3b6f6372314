package book

import (
	"fmt"
	"strings"
)

// Book is a catalog entry (immutable value object).
// Many ISBNs may share a title: each edition is its own Book.
type Book struct {
	isbn          string
	title         string
	author        string
	imageURL      string
	imageURLSmall string
	imageURLLarge string
	price         int
}

// New validates and creates a Book. ISBN and title are required.
func New(isbn, title, author, imageURL string, price int) (Book, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Book{}, fmt.Errorf("book ISBN is required")
	}
	if strings.TrimSpace(title) == "" {
		return Book{}, fmt.Errorf("book %s: title is required", isbn)
	}
	if price < 0 {
		return Book{}, fmt.Errorf("book %s: price must be non-negative, got %d", isbn, price)
	}
	return Book{
		isbn:     isbn,
		title:    title,
		author:   author,
		imageURL: imageURL,
		price:    price,
	}, nil
}

// Reconstruct creates a Book without validation (storage hydration).
func Reconstruct(isbn, title, author, imageURL, imageURLSmall, imageURLLarge string, price int) Book {
	return Book{
		isbn: isbn, title: title, author: author,
		imageURL: imageURL, imageURLSmall: imageURLSmall, imageURLLarge: imageURLLarge,
		price: price,
	}
}

// ISBN returns the unique identifier.
func (b *Book) ISBN() string { return b.isbn }

// Title returns the display title.
func (b *Book) Title() string { return b.title }

// Author returns the author.
func (b *Book) Author() string { return b.author }

// ImageURL returns the primary (medium) cover URL.
func (b *Book) ImageURL() string { return b.imageURL }

// ImageURLSmall returns the small cover URL, possibly empty.
func (b *Book) ImageURLSmall() string { return b.imageURLSmall }

// ImageURLLarge returns the large cover URL, possibly empty.
func (b *Book) ImageURLLarge() string { return b.imageURLLarge }

// Price returns the price.
func (b *Book) Price() int { return b.price }

// WithCovers returns a copy with the small and large cover URLs set.
func (b *Book) WithCovers(small, large string) Book {
	c := *b
	c.imageURLSmall = small
	c.imageURLLarge = large
	return c
}
