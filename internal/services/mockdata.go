package services

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/polymarket-insight/internal/config"
	"github.com/irfndi/polymarket-insight/internal/models"
	"github.com/irfndi/polymarket-insight/internal/utils"
)

const (
	// PlaceholderWarning marks details generated for an ID outside the catalog
	PlaceholderWarning = "Using generic mock data as market_id was not predefined."

	startPriceFloor = 0.1
	startPriceCeil  = 0.9
	minPrice        = 0.01
	maxPrice        = 0.99
	dailyPriceSigma = 0.03
)

// marketProfile drives generation for one catalog market
type marketProfile struct {
	Name       string
	Category   string
	BaseYes    float64
	Volatility float64
}

var marketCatalog = map[string]marketProfile{
	"market1": {Name: "Will AI achieve AGI by 2030?", Category: "Technology", BaseYes: 0.30, Volatility: 0.1},
	"market2": {Name: "Who will win the next US Presidential Election?", Category: "Politics", BaseYes: 0.50, Volatility: 0.15},
	"market3": {Name: "Will Ethereum reach $10,000 by EOY?", Category: "Crypto", BaseYes: 0.15, Volatility: 0.2},
	"market4": {Name: "Will fusion power be commercially viable by 2040?", Category: "Science", BaseYes: 0.20, Volatility: 0.08},
	"market5": {Name: "Will global temperatures rise >2°C by 2050?", Category: "Climate", BaseYes: 0.65, Volatility: 0.05},
}

var marketCategories = []string{"Politics", "Crypto", "Sports", "Technology", "Science", "Climate", "Entertainment"}

// MockDataService simulates a prediction-market data provider. It holds no
// mutable state: every call builds its own random source.
type MockDataService struct {
	config config.MockDataConfig
	logger *logrus.Logger
	now    func() time.Time
}

// NewMockDataService creates a new mock data service
func NewMockDataService(cfg config.MockDataConfig, logger *logrus.Logger) *MockDataService {
	return &MockDataService{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// IsKnownMarket reports whether id is in the predefined catalog
func (s *MockDataService) IsKnownMarket(id string) bool {
	_, ok := marketCatalog[strings.TrimSpace(id)]
	return ok
}

// ListMarkets returns the catalog sorted by ID
func (s *MockDataService) ListMarkets() []models.MarketSummary {
	markets := make([]models.MarketSummary, 0, len(marketCatalog))
	for id, profile := range marketCatalog {
		markets = append(markets, models.MarketSummary{
			ID:       id,
			Name:     profile.Name,
			Category: profile.Category,
		})
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].ID < markets[j].ID })
	return markets
}

// GetMarketDetails returns a snapshot card for the market. IDs outside the
// catalog get placeholder details carrying a Warning instead of an error.
func (s *MockDataService) GetMarketDetails(id string) (*models.MarketDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, utils.NewFieldError("market_id", "market ID cannot be empty")
	}

	rng := s.newRand(id, "details")
	today := s.now().UTC()

	profile, ok := marketCatalog[id]
	if !ok {
		s.logger.WithField("market_id", id).Debug("Generating placeholder market details")

		yes := roundTo(uniform(rng, 0.05, 0.95), 2)
		return &models.MarketDetails{
			ID:              id,
			Name:            "Mock Market: " + id + " (Generic)",
			Category:        marketCategories[rng.IntN(len(marketCategories))],
			CurrentYesPrice: decimal.NewFromFloat(yes).Round(2),
			CurrentNoPrice:  decimal.NewFromInt(1).Sub(decimal.NewFromFloat(yes).Round(2)),
			LiquidityUSD:    randInt(rng, 1000, 100000),
			Volume24hUSD:    randInt(rng, 100, 10000),
			ResolutionDate:  today.AddDate(0, 0, int(randInt(rng, 30, 365))).Format(time.DateOnly),
			Description:     "This is a generic mock market. Enter a known ID like 'market1' for more specific mock data.",
			Warning:         PlaceholderWarning,
		}, nil
	}

	yes := decimal.NewFromFloat(roundTo(clamp(profile.BaseYes+uniform(rng, -profile.Volatility, profile.Volatility), minPrice, maxPrice), 2)).Round(2)
	return &models.MarketDetails{
		ID:              id,
		Name:            profile.Name,
		Category:        profile.Category,
		CurrentYesPrice: yes,
		CurrentNoPrice:  decimal.NewFromInt(1).Sub(yes),
		LiquidityUSD:    randInt(rng, 5000, 2000000),
		Volume24hUSD:    randInt(rng, 1000, 50000),
		ResolutionDate:  today.AddDate(0, 0, int(randInt(rng, 10, 730))).Format(time.DateOnly),
		Description:     "This is a mock description for the market '" + profile.Name + "'. Resolution criteria and other details would go here in a real market.",
	}, nil
}

// GenerateHistory produces one observation per day, ending yesterday (UTC).
// Empty or unknown IDs yield an empty record. days <= 0 selects the
// configured default and values above config.MaxHistoryDays are capped.
func (s *MockDataService) GenerateHistory(id string, days int) *models.MarketRecord {
	id = strings.TrimSpace(id)
	record := &models.MarketRecord{MarketID: id, Observations: []models.Observation{}}

	if _, ok := marketCatalog[id]; !ok {
		s.logger.WithField("market_id", id).Debug("No history for market outside the catalog")
		return record
	}

	if days <= 0 {
		days = s.config.HistoryDays
	}
	if days > config.MaxHistoryDays {
		days = config.MaxHistoryDays
	}

	rng := s.newRand(id, "history")
	end := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)
	yes := startPrice(id)

	record.Observations = make([]models.Observation, 0, days)
	for i := 0; i < days; i++ {
		yesPrice := decimal.NewFromFloat(yes).Round(2)

		var volume int64
		if rng.Float64() < s.config.SpikeProbability {
			volume = randIntExclusive(rng, 2000, 15000)
		} else {
			volume = randIntExclusive(rng, 100, 2000)
		}

		record.Observations = append(record.Observations, models.Observation{
			Timestamp: end.AddDate(0, 0, i-days+1),
			YesPrice:  yesPrice,
			NoPrice:   decimal.NewFromInt(1).Sub(yesPrice),
			Volume:    decimal.NewFromInt(volume),
		})

		yes += rng.NormFloat64() * dailyPriceSigma
		yes = roundTo(clamp(yes, minPrice, maxPrice), 2)
	}

	s.logger.WithFields(logrus.Fields{
		"market_id": id,
		"days":      days,
	}).Debug("Generated market history")

	return record
}

// startPrice maps an ID onto a stable starting price in [0.1, 0.9]
func startPrice(id string) float64 {
	sum := 0
	for _, b := range []byte(id) {
		sum += int(b)
	}
	seed := float64(sum%100) / 100
	return clamp(seed*0.8+0.1, startPriceFloor, startPriceCeil)
}

// newRand returns a fresh generator. A configured seed makes output a pure
// function of (seed, id, purpose); seed 0 draws a new seed per call.
func (s *MockDataService) newRand(id, purpose string) *rand.Rand {
	if s.config.Seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(purpose))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(id))
	return rand.New(rand.NewPCG(uint64(s.config.Seed), h.Sum64()))
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

// randInt draws from [low, high]
func randInt(rng *rand.Rand, low, high int64) int64 {
	return low + rng.Int64N(high-low+1)
}

// randIntExclusive draws from [low, high)
func randIntExclusive(rng *rand.Rand, low, high int64) int64 {
	return low + rng.Int64N(high-low)
}

func clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
