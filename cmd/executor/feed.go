package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// fileFeed reads the drop-file contracts the out-of-scope layers write:
// the strategy layer drops opportunities, the market-data layer drops
// current YES prices, and the resolver drops settled outcomes.
type fileFeed struct {
	oppPath        string
	pricePath      string
	resolutionPath string
}

func newFileFeed(oppPath, pricePath string) *fileFeed {
	return &fileFeed{
		oppPath:        oppPath,
		pricePath:      pricePath,
		resolutionPath: "resolutions.json",
	}
}

// Opportunities reads the current opportunity batch. A missing file is a
// quiet cycle, not an error.
func (f *fileFeed) Opportunities() ([]domain.Opportunity, error) {
	data, err := os.ReadFile(f.oppPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var opps []domain.Opportunity
	if err := json.Unmarshal(data, &opps); err != nil {
		return nil, err
	}
	return opps, nil
}

// Prices reads the conditionID → YES price map for the pending sweep.
func (f *fileFeed) Prices() (map[string]float64, error) {
	data, err := os.ReadFile(f.pricePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var prices map[string]float64
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// resolution is one settled market reported by the external resolver.
type resolution struct {
	ConditionID string      `json:"conditionId"`
	Outcome     domain.Side `json:"outcome"`
}

// Resolutions reads and consumes the resolution drop-file. The file is
// removed after a successful read so each outcome settles exactly once.
func (f *fileFeed) Resolutions() []resolution {
	data, err := os.ReadFile(f.resolutionPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		slog.Warn("feed: error reading resolutions", "err", err)
		return nil
	}

	var resolutions []resolution
	if err := json.Unmarshal(data, &resolutions); err != nil {
		slog.Warn("feed: malformed resolutions file", "err", err)
		return nil
	}

	if err := os.Remove(f.resolutionPath); err != nil {
		slog.Warn("feed: could not consume resolutions file", "err", err)
	}
	return resolutions
}
