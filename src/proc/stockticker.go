package proc

import (
	"context"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/game"
	"github.com/ashvale/ember/src/sys"
)

// Default tickers seeded on first boot. Anchors double as the mean the
// random walk reverts to.
var defaultStocks = []*sys.Stock{
	{Symbol: "EMBR", Name: "Ember Industries", Price: 120},
	{Symbol: "WOLF", Name: "Moonlight Logistics", Price: 45},
	{Symbol: "ACME", Name: "Acme Holdings", Price: 230},
	{Symbol: "SNCK", Name: "Snack Dynamics", Price: 18},
	{Symbol: "QBIT", Name: "Qubit Labs", Price: 310},
	{Symbol: "FARM", Name: "Greenfield Farms", Price: 62},
}

const (
	stockVolatility = 0.015
	stockDrift      = 0.02
)

func init() {
	sys.RegisterDaemon(sys.LogStocks, StartStockTicker)
}

// StartStockTicker seeds the market and advances prices on the configured
// interval.
func StartStockTicker(s *discordgo.Session) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := sys.SeedStocks(ctx, defaultStocks); err != nil {
			sys.LogStocks("failed to seed market: %v", err)
		}
		cancel()

		interval := 5 * time.Minute
		if sys.GlobalConfig != nil && sys.GlobalConfig.StockTick > 0 {
			interval = sys.GlobalConfig.StockTick
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			tickMarket(rng)
		}
	}()
}

func tickMarket(rng *rand.Rand) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stocks, err := sys.GetAllStocks(ctx)
	if err != nil {
		sys.LogStocks("tick failed to list market: %v", err)
		return
	}

	anchors := make(map[string]float64, len(defaultStocks))
	for _, d := range defaultStocks {
		anchors[d.Symbol] = d.Price
	}

	for _, st := range stocks {
		anchor, ok := anchors[st.Symbol]
		if !ok {
			anchor = st.Price
		}
		next := game.NextPrice(rng, st.Price, anchor, stockVolatility, stockDrift)
		if err := sys.UpdateStockPrice(ctx, st.Symbol, next); err != nil {
			sys.LogStocks("failed to update %s: %v", st.Symbol, err)
		}
	}
	sys.LogStocks("market tick complete, %d tickers updated", len(stocks))
}
