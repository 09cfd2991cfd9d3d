// Package storefront renders the customer-facing product cards and keeps the
// shopper's favorites.
package storefront

import (
	"math"
	"strconv"
	"strings"

	"tokodash/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	// MaxRating is the number of stars a store can score.
	MaxRating   = 5
	ellipsis    = "…"
	fullStar    = "★"
	emptyStar   = "☆"
	favoriteTag = "♥"
)

// Card is the data shown on one product card.
type Card struct {
	ItemID      int64
	Name        string
	ImageURL    string
	Price       float64
	StoreName   string
	StoreRating float64
	Favorite    bool
}

// CardFromItem builds a card for item sold by storeName.
func CardFromItem(item models.Item, storeName string, rating float64) Card {
	c := Card{
		ItemID:      item.ID,
		Name:        item.Name,
		Price:       item.Price,
		StoreName:   storeName,
		StoreRating: rating,
	}
	if item.ImageURL != nil {
		c.ImageURL = *item.ImageURL
	}
	return c
}

// FormatPrice formats price in Canadian dollars with as many decimals as the
// value needs, e.g. CA$12.5.
func FormatPrice(price float64) string {
	return "CA$" + strconv.FormatFloat(price, 'f', -1, 64)
}

// Stars renders rating as five stars, rounded to the nearest whole star and
// clamped to [0, MaxRating].
func Stars(rating float64) string {
	n := int(math.Round(rating))
	n = max(0, min(MaxRating, n))
	return strings.Repeat(fullStar, n) + strings.Repeat(emptyStar, MaxRating-n)
}

// Truncate shortens s to width cells, ending in an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, ellipsis)
}

// CardStyles holds the styles used by RenderCard.
type CardStyles struct {
	Border   lipgloss.Style
	Name     lipgloss.Style
	Store    lipgloss.Style
	Price    lipgloss.Style
	Favorite lipgloss.Style
	Selected lipgloss.Style
}

// DefaultCardStyles returns the default card styles.
func DefaultCardStyles() CardStyles {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#eeeeee")).
		Padding(0, 1)
	return CardStyles{
		Border:   border,
		Name:     lipgloss.NewStyle().Bold(true),
		Store:    lipgloss.NewStyle().Faint(true),
		Price:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2e7d32")),
		Favorite: lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Selected: border.BorderForeground(lipgloss.Color("#8BC34A")),
	}
}

// RenderCard draws c as a bordered box whose content is width cells wide.
func RenderCard(c Card, width int, selected bool, styles CardStyles) string {
	name := Truncate(c.Name, width)
	if c.Favorite {
		name = Truncate(c.Name, width-2) + " " + styles.Favorite.Render(favoriteTag)
	}
	lines := []string{
		styles.Name.Render(name),
		styles.Store.Render(Truncate(c.StoreName, width-MaxRating-1)) + " " + Stars(c.StoreRating),
		styles.Price.Render(FormatPrice(c.Price)),
	}

	box := styles.Border
	if selected {
		box = styles.Selected
	}
	return box.Width(width + 2).Render(strings.Join(lines, "\n"))
}
