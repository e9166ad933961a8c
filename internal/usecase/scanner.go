package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/domain/repository"
	"SETPulse/internal/service/marketdata"
	"SETPulse/internal/services/fibscan"
	"SETPulse/internal/services/indicators"
	"SETPulse/pkg/logger"
	"SETPulse/pkg/pool"
)

// Default fan-out configuration. Per-task timeout protects the run
// from one hung fetch.
const (
	defaultWorkers = 10
	maxWorkers     = 15
	taskTimeout    = 30 * time.Second
)

var defaultMTFPeriods = []string{"3mo", "6mo", "1y"}

// Scanner fans symbol scans across a worker pool. Stateless between
// runs; results live only in the returned slice.
type Scanner struct {
	data    repository.MarketData
	log     *logger.Logger
	metrics repository.Metrics
}

// NewScanner builds the scan orchestrator. metrics may be nil in tests.
func NewScanner(data repository.MarketData, log *logger.Logger, metrics repository.Metrics) *Scanner {
	return &Scanner{data: data, log: log, metrics: metrics}
}

// Scan dispatches by mode and returns the ranked, filtered table.
// Progress fires after every task completion whether or not the task
// produced a row; failed symbols are dropped silently from results.
func (s *Scanner) Scan(ctx context.Context, params models.ScanParams, progress models.ProgressFunc) ([]models.ScanResult, error) {
	if params.Workers <= 0 {
		params.Workers = defaultWorkers
	}
	if params.Workers > maxWorkers {
		params.Workers = maxWorkers
	}

	started := time.Now()
	var results []models.ScanResult
	var err error
	switch params.Mode {
	case models.ScanModeMTF:
		results, err = s.scanMTF(ctx, params, progress)
	case models.ScanModeIntraday:
		results, err = s.scanIntraday(ctx, params, progress)
	case models.ScanModeSwing, "":
		results, err = s.scanSwing(ctx, params, progress)
	default:
		return nil, fmt.Errorf("scanner: unknown mode %q", params.Mode)
	}
	if s.metrics != nil {
		s.metrics.RecordLatency("scan_"+string(params.Mode), time.Since(started).Seconds())
	}
	return results, err
}

// tracker counts completions across workers and relays progress.
type tracker struct {
	done     atomic.Int64
	total    int
	progress models.ProgressFunc
}

func (t *tracker) tick(label string) {
	n := int(t.done.Add(1))
	if t.progress != nil {
		t.progress(n, t.total, label)
	}
}

func (s *Scanner) scanSwing(ctx context.Context, params models.ScanParams, progress models.ProgressFunc) ([]models.ScanResult, error) {
	symbols := params.Symbols
	if len(symbols) == 0 {
		symbols = marketdata.ScanUniverse
	}
	period := repository.NormalizePeriod(params.Period)

	var mu sync.Mutex
	var results []models.ScanResult
	track := &tracker{total: len(symbols), progress: progress}

	jobs := make([]pool.Job, 0, len(symbols))
	for _, sym := range symbols {
		sym := sym
		jobs = append(jobs, func(ctx context.Context) {
			defer track.tick(sym)
			res := s.scanOneSwing(ctx, sym, period)
			s.recordTask("swing", res != nil)
			if res == nil {
				return
			}
			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
		})
	}

	err := pool.New(params.Workers, taskTimeout).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results = filterResults(results, params, func(r models.ScanResult) float64 { return r.FibScore })
	sort.SliceStable(results, func(i, j int) bool { return results[i].FibScore > results[j].FibScore })
	return results, nil
}

// scanOneSwing runs the full single-symbol pipeline; any failure or
// thin history yields nil.
func (s *Scanner) scanOneSwing(ctx context.Context, symbol, period string) *models.ScanResult {
	series, err := s.data.Historical(ctx, symbol, period, "1d")
	if err != nil || series.Len() < 20 {
		return nil
	}
	frame := indicators.Compute(series)
	if frame.Len() < 15 {
		return nil
	}
	res, err := fibscan.AnalyzeSwing(frame)
	if err != nil {
		s.log.Debug("swing scan skipped",
			logger.String("symbol", symbol),
			logger.Error(err))
		return nil
	}
	return res
}

func (s *Scanner) scanMTF(ctx context.Context, params models.ScanParams, progress models.ProgressFunc) ([]models.ScanResult, error) {
	symbols := params.Symbols
	if len(symbols) == 0 {
		symbols = marketdata.ScanUniverse
	}
	periods := params.Periods
	if len(periods) == 0 {
		periods = defaultMTFPeriods
	}

	type task struct{ symbol, period string }
	var tasks []task
	for _, sym := range symbols {
		for _, p := range periods {
			tasks = append(tasks, task{sym, p})
		}
	}

	var mu sync.Mutex
	raw := make(map[string]map[string]*models.ScanResult)
	track := &tracker{total: len(tasks), progress: progress}

	jobs := make([]pool.Job, 0, len(tasks))
	for _, t := range tasks {
		t := t
		jobs = append(jobs, func(ctx context.Context) {
			defer track.tick(fmt.Sprintf("%s (%s)", t.symbol, t.period))
			res := s.scanOneSwing(ctx, t.symbol, t.period)
			s.recordTask("mtf", res != nil)
			if res == nil {
				return
			}
			mu.Lock()
			if raw[t.symbol] == nil {
				raw[t.symbol] = make(map[string]*models.ScanResult)
			}
			raw[t.symbol][t.period] = res
			mu.Unlock()
		})
	}

	if err := pool.New(params.Workers, taskTimeout).Run(ctx, jobs); err != nil {
		return nil, err
	}

	merged := mergeMTF(raw, periods, params.MinFibScore)
	merged = filterResults(merged, params, func(r models.ScanResult) float64 { return r.MTFScore })
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].PassedTFs != merged[j].PassedTFs {
			return merged[i].PassedTFs > merged[j].PassedTFs
		}
		return merged[i].MTFScore > merged[j].MTFScore
	})
	return merged, nil
}

// mergeMTF folds per-period rows into one confluence row per symbol.
// The middle timeframe is primary when present.
func mergeMTF(raw map[string]map[string]*models.ScanResult, periods []string, minFibScore float64) []models.ScanResult {
	var merged []models.ScanResult
	for _, periodResults := range raw {
		if len(periodResults) == 0 {
			continue
		}

		primary := periodResults["6mo"]
		if primary == nil {
			for _, p := range periods {
				if r, ok := periodResults[p]; ok {
					primary = r
					break
				}
			}
		}

		row := *primary
		row.PeriodScores = make(map[string]float64, len(periodResults))
		row.PeriodZones = make(map[string]string, len(periodResults))

		sum := 0.0
		allGolden := true
		passed := 0
		for p, r := range periodResults {
			row.PeriodScores[p] = r.FibScore
			row.PeriodZones[p] = r.Zone
			sum += r.FibScore
			if !fibscan.IsGoldenZone(r.ZoneRatio) {
				allGolden = false
			}
			if r.FibScore >= minFibScore {
				passed++
			}
		}
		n := len(periodResults)
		avg := sum / float64(n)

		bonus := 0.0
		switch {
		case n >= 3 && allGolden:
			bonus = 15
		case n >= 2 && allGolden:
			bonus = 10
		case n >= 2:
			bonus = 5
		}

		row.MTFScore = math.Min(100, math.Round((avg+bonus)*10)/10)
		row.PassedTFs = passed
		row.Confluence = fmt.Sprintf("%d of %d timeframes", passed, len(periods))
		row.Grade = fibscan.GradeMTF(row.MTFScore)
		merged = append(merged, row)
	}
	return merged
}

func (s *Scanner) scanIntraday(ctx context.Context, params models.ScanParams, progress models.ProgressFunc) ([]models.ScanResult, error) {
	symbols := params.Symbols
	if len(symbols) == 0 {
		symbols = marketdata.DaytradeUniverse
	}
	interval := params.Interval
	if interval == "" {
		interval = "15m"
	}
	plan := repository.IntradayFetchFor(interval)

	var mu sync.Mutex
	var results []models.ScanResult
	track := &tracker{total: len(symbols), progress: progress}

	jobs := make([]pool.Job, 0, len(symbols))
	for _, sym := range symbols {
		sym := sym
		jobs = append(jobs, func(ctx context.Context) {
			defer track.tick(sym)
			res := s.scanOneIntraday(ctx, sym, interval, plan)
			s.recordTask("intraday", res != nil)
			if res == nil {
				return
			}
			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
		})
	}

	if err := pool.New(params.Workers, taskTimeout).Run(ctx, jobs); err != nil {
		return nil, err
	}

	results = filterResults(results, params, func(r models.ScanResult) float64 { return r.FibScore })
	sort.SliceStable(results, func(i, j int) bool { return results[i].FibScore > results[j].FibScore })
	return results, nil
}

func (s *Scanner) scanOneIntraday(ctx context.Context, symbol, interval string, plan repository.IntradayFetch) *models.ScanResult {
	series, err := s.data.Historical(ctx, symbol, plan.Period, interval)
	if err != nil || series.Len() < plan.MinBars {
		return nil
	}
	frame := indicators.ComputeIntraday(series)
	if frame.Len() < 10 {
		return nil
	}
	res, err := fibscan.AnalyzeIntraday(frame, interval)
	if err != nil {
		s.log.Debug("intraday scan skipped",
			logger.String("symbol", symbol),
			logger.Error(err))
		return nil
	}
	return res
}

// filterResults applies user thresholds after all tasks complete, so a
// strict filter never hides how many symbols were actually scanned.
func filterResults(in []models.ScanResult, params models.ScanParams, score func(models.ScanResult) float64) []models.ScanResult {
	out := in[:0]
	for _, r := range in {
		if score(r) >= params.MinFibScore && r.RiskReward >= params.MinRR {
			out = append(out, r)
		}
	}
	return out
}

func (s *Scanner) recordTask(mode string, ok bool) {
	if s.metrics != nil {
		s.metrics.RecordScanTask(mode, ok)
	}
}
