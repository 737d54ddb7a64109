// Package generator produces seedable synthetic catalog and user datasets
// with an embedded signup-to-release correlation signal, so attribution has
// something real to find. The same seed always yields the same datasets.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"content-roi-service/internal/attribution/core/domain"

	"github.com/shopspring/decimal"
)

type Config struct {
	Shows int
	Users int
	Seed  int64

	FirstRelease time.Time
	LastRelease  time.Time

	// CampaignShare is the fraction of users whose signup is placed within
	// a few days of a random release to simulate campaign effect.
	CampaignShare float64
	// MeanActiveMonths drives the Poisson draw for user lifetime.
	MeanActiveMonths float64
}

func DefaultConfig() Config {
	return Config{
		Shows:            500,
		Users:            10_000,
		Seed:             42,
		FirstRelease:     domain.Date(2017, 1, 1),
		LastRelease:      domain.Date(2025, 12, 31),
		CampaignShare:    0.30,
		MeanActiveMonths: 6,
	}
}

var genres = []string{"Sci-Fi", "Comedy", "Documentary", "Drama", "Thriller", "Romance", "Animation", "Horror"}

var genreWeights = []float64{0.15, 0.18, 0.10, 0.20, 0.12, 0.12, 0.08, 0.05}

var baseCost = map[string]float64{
	"Sci-Fi":      30_000_000,
	"Comedy":      5_000_000,
	"Documentary": 1_000_000,
	"Drama":       10_000_000,
	"Thriller":    12_000_000,
	"Romance":     4_000_000,
	"Animation":   18_000_000,
	"Horror":      3_000_000,
}

type Generator struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Catalog generates the content dataset, sorted by release date.
func (g *Generator) Catalog() []domain.ContentItem {
	items := make([]domain.ContentItem, 0, g.cfg.Shows)
	for i := 1; i <= g.cfg.Shows; i++ {
		genre := g.pickGenre()
		cost := g.rng.NormFloat64()*baseCost[genre]*0.25 + baseCost[genre]
		if cost < 100_000 {
			cost = 100_000
		}
		items = append(items, domain.ContentItem{
			ShowID:         fmt.Sprintf("SH%04d", i),
			Title:          fmt.Sprintf("%s Series %d", genre[:3], i),
			Genre:          genre,
			ReleaseDate:    g.randomDate(g.cfg.FirstRelease, g.cfg.LastRelease),
			ProductionCost: decimal.NewFromFloat(math.Round(cost)),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ReleaseDate.Before(items[j].ReleaseDate) })
	return items
}

// UserBase generates the user dataset against a catalog. A CampaignShare
// slice of signups lands within +/- 3 days of a random release; the rest
// are uniform over the signup range.
func (g *Generator) UserBase(catalog []domain.ContentItem) []domain.User {
	users := make([]domain.User, 0, g.cfg.Users)
	for i := 1; i <= g.cfg.Users; i++ {
		var signUp time.Time
		if len(catalog) > 0 && g.rng.Float64() < g.cfg.CampaignShare {
			release := catalog[g.rng.Intn(len(catalog))].ReleaseDate
			signUp = release.AddDate(0, 0, g.rng.Intn(7)-3)
		} else {
			signUp = g.randomDate(g.cfg.FirstRelease, g.cfg.LastRelease)
		}

		monthsActive := g.poisson(g.cfg.MeanActiveMonths)
		revenue := g.rng.ExpFloat64()*8.0 + 6.0

		users = append(users, domain.User{
			UserID:         fmt.Sprintf("U%06d", i),
			SignUpDate:     signUp,
			LastActiveDate: signUp.AddDate(0, monthsActive, 0),
			MonthlyRevenue: decimal.NewFromFloat(revenue).Round(2),
		})
	}
	return users
}

func (g *Generator) pickGenre() string {
	r := g.rng.Float64()
	acc := 0.0
	for i, w := range genreWeights {
		acc += w
		if r < acc {
			return genres[i]
		}
	}
	return genres[len(genres)-1]
}

func (g *Generator) randomDate(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, g.rng.Intn(days+1))
}

// poisson draws by Knuth's method; fine for small means.
func (g *Generator) poisson(mean float64) int {
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= g.rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
