// advisor-report runs the dual-horizon analysis pipeline against the latest
// snapshot and prints a console report, no server required.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"market-advisor/internal/analyzer"
	"market-advisor/internal/decision"
	"market-advisor/internal/logging"
	"market-advisor/internal/marketdata"
)

func main() {
	dataDir := flag.String("data", "data", "directory holding the latest market snapshot")
	riskTolerance := flag.Float64("risk", 0.5, "risk tolerance in [0,1]")
	minConfidence := flag.Float64("min-confidence", 60, "minimum confidence in [0,100]")
	flag.Parse()

	_ = godotenv.Load()

	logger := logging.New(&logging.Config{Level: "WARN", Output: "stderr", JSONFormat: false})

	snapshots, err := marketdata.NewSnapshotStore(*dataDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open data directory: %v\n", err)
		os.Exit(1)
	}

	snapshot, err := snapshots.LoadLatest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load snapshot: %v\n", err)
		os.Exit(1)
	}
	if len(snapshot) == 0 {
		fmt.Fprintln(os.Stderr, "No snapshot data found, nothing to analyze")
		os.Exit(1)
	}

	analyses := analyzer.New(logger).Analyze(snapshot)
	cfg := decision.NewConfig(*riskTolerance, *minConfidence)
	recommendations := decision.NewEngine(logger).Recommend(analyses, cfg)

	symbols := make([]string, 0, len(recommendations))
	for symbol := range recommendations {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("MARKET ADVISOR REPORT")
	fmt.Println(strings.Repeat("=", 80))

	for _, symbol := range symbols {
		a := analyses[symbol]
		rec := recommendations[symbol]

		fmt.Printf("\n%s  $%.4f (%+.2f%% predicted)\n", symbol, a.CurrentPrice, a.PriceChangePct)
		fmt.Printf("  Trend:      %s (annual %s / monthly %s)\n", a.Trend, a.AnnualTrend, a.MonthlyTrend)
		fmt.Printf("  Confidence: %.0f%%  Volatility: %s  R:R %.2f\n", a.Confidence, a.Volatility, a.RiskRewardRatio)
		if len(a.Patterns) > 0 {
			fmt.Printf("  Patterns:   %s\n", strings.Join(a.Patterns, ", "))
		}
		fmt.Printf("  Action:     %s [%s risk] - %s\n", rec.Action, rec.RiskLevel, rec.Reason)
		fmt.Printf("  Target:     $%.4f  Stop: $%.4f  Size: %.1f%% of portfolio\n",
			rec.TargetPrice, rec.StopLoss, decision.SuggestPositionSize(rec.RiskLevel, cfg)*100)
	}

	summary := decision.SummarizePortfolio(recommendations)
	fmt.Println("\n" + strings.Repeat("-", 80))
	fmt.Printf("PORTFOLIO: %d assets | BUY %d / SELL %d / HOLD %d\n",
		summary.TotalAssets,
		summary.Actions[decision.ActionBuy],
		summary.Actions[decision.ActionSell],
		summary.Actions[decision.ActionHold])
	fmt.Printf("Sentiment: %s | Overall risk: %s | Avg confidence: %.1f%%\n",
		summary.MarketSentiment, summary.OverallRisk, summary.AverageConfidence)
}
