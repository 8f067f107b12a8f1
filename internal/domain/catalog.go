package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gender is a top-level catalog section (mens, womens, kids).
type Gender struct {
	ID          int64
	Name        string
	DisplayName string
	BannerImage string
	IsActive    bool
}

// Category groups outfits under a gender (formals, traditional, chudi, ...).
type Category struct {
	ID          int64
	GenderID    int64
	Name        string
	DisplayName string
	BannerImage string
	ClothType   string
	IsActive    bool
	OutfitCount int
}

// Outfit is a catalog item. Read-only to the try-on core; the ImageURL holds
// one of an inline data URI, a remote URL, or a local path.
type Outfit struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description string
	ImageURL    string
	ClothType   string
	Price       int
	IsActive    bool
	CreatedAt   time.Time
}

var titleCaser = cases.Title(language.Und)

// TitleName renders a machine name like "modern_wears" as a display label.
// Used as the fallback when a row carries no explicit display name.
func TitleName(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// Display returns the category label shown to clients.
func (c Category) Display() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return TitleName(c.Name)
}

// Display returns the gender label shown to clients.
func (g Gender) Display() string {
	if g.DisplayName != "" {
		return g.DisplayName
	}
	return TitleName(g.Name)
}
