package recorder

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// tickerDay aggregates one ticker's analyses for a day.
type tickerDay struct {
	Ticker     string
	Count      int
	Buy        int
	Hold       int
	Sell       int
	ScoreSum   float64
	LastLabel  types.Label
	LastScore  float64
	LastRecord time.Time
}

func (j *JSONL) summaryPath(day time.Time) string {
	return filepath.Join(j.dir, "summary", day.UTC().Format("2006-01-02")+".csv")
}

// openDay opens the day's log, compressed or not. It returns os.ErrNotExist when neither exists.
func (j *JSONL) openDay(day time.Time) (io.ReadCloser, error) {
	p := j.dailyFilepath(day)
	if f, err := os.Open(p); err == nil {
		return f, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	f, err := os.Open(p + ".gz")
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{zr, f}, nil
}

// SummarizeDay writes a per-ticker CSV of the analyses recorded on day (UTC) and returns its path.
// It returns "" when nothing was recorded that day.
func (j *JSONL) SummarizeDay(ctx context.Context, day time.Time) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	in, err := j.openDay(day)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer in.Close()

	aggs := map[string]*tickerDay{}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	skipped := 0
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			skipped++
			continue
		}
		r := e.Result
		row := aggs[r.Ticker]
		if row == nil {
			row = &tickerDay{Ticker: r.Ticker}
			aggs[r.Ticker] = row
		}
		row.Count++
		row.ScoreSum += r.FinalScore
		switch r.Label {
		case types.Buy:
			row.Buy++
		case types.Hold:
			row.Hold++
		case types.Sell:
			row.Sell++
		}
		if !e.RecordedAt.Before(row.LastRecord) {
			row.LastRecord = e.RecordedAt
			row.LastLabel = r.Label
			row.LastScore = r.FinalScore
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if skipped > 0 {
		logger.Warn(ctx, "Skipped malformed analysis lines", "day", day.Format("2006-01-02"), "count", skipped)
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := j.summaryPath(day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"ticker", "analyses", "buy", "hold", "sell", "avg_final_score", "last_label", "last_final_score"}); err != nil {
		return "", err
	}
	total := 0
	for _, k := range keys {
		r := aggs[k]
		total += r.Count
		rec := []string{
			r.Ticker,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.Buy),
			strconv.Itoa(r.Hold),
			strconv.Itoa(r.Sell),
			fmt.Sprintf("%.2f", r.ScoreSum/float64(r.Count)),
			string(r.LastLabel),
			fmt.Sprintf("%.2f", r.LastScore),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	if err := w.Write([]string{"TOTAL", strconv.Itoa(total), "", "", "", "", "", ""}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

// SummarizeYesterday summarizes the previous UTC day. It is the scheduled form of SummarizeDay.
func (j *JSONL) SummarizeYesterday(ctx context.Context) (int, error) {
	p, err := j.SummarizeDay(ctx, j.now().UTC().AddDate(0, 0, -1))
	if err != nil || p == "" {
		return 0, err
	}
	logger.Info(ctx, "Daily analysis summary written", "path", p)
	return 1, nil
}
