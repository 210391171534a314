package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/metrics"
	"github.com/andcook/andcook/backend/internal/models"
)

const fallbackSlug = "recipe"

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Slugify lowercases title, folds accents, drops everything except ASCII
// word characters and whitespace, and joins the words with hyphens.
//
//	Slugify("Homemade Pizza!") == "homemade-pizza"
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	slug := nonWordRe.ReplaceAllString(strings.ToLower(folded), "")
	slug = whitespaceRe.ReplaceAllString(strings.TrimSpace(slug), "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// SlugGenerator produces recipe slugs that are unique at generation time.
// The unique index on recipes.slug is the actual guarantee; writers retry
// with Suffixed when an insert races.
type SlugGenerator struct {
	db  *gorm.DB
	now func() time.Time

	mu   sync.Mutex
	last int64
}

func NewSlugGenerator(db *gorm.DB) *SlugGenerator {
	return &SlugGenerator{db: db, now: time.Now}
}

// Generate returns Slugify(title), suffixed when another recipe (other than
// excludeID) already uses it.
func (g *SlugGenerator) Generate(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	return g.generate(g.db.WithContext(ctx), title, excludeID)
}

// generate runs the collision check on db, which may be an open transaction.
func (g *SlugGenerator) generate(db *gorm.DB, title string, excludeID uuid.UUID) (string, error) {
	base := Slugify(title)

	query := db.Model(&models.Recipe{}).Where("slug = ?", base)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if count == 0 {
		return base, nil
	}

	metrics.SlugCollisions.Inc()
	return g.Suffixed(base), nil
}

// Suffixed appends a millisecond timestamp to base. Successive calls on one
// generator never return the same suffix.
func (g *SlugGenerator) Suffixed(base string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", base, ms)
}
