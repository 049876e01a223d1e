package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"BoardPulse/internal/model"
)

// EastMoney endpoints.
const (
	emListURL  = "https://82.push2.eastmoney.com/api/qt/clist/get"
	emKLineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

	// fs selector for the whole A-share universe (SH + SZ + BSE).
	emStockFS = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23,m:0+t:81+s:2048"
	// fs selector for concept boards (题材板块).
	emBoardFS = "m:90+t:3"

	// f12 code f14 name f15 high f16 low f17 open f18 prev close
	// f2 close f5 volume(手) f6 amount
	emListFields = "f2,f5,f6,f12,f14,f15,f16,f17,f18"

	emPageSize = 500
	emVolLot   = 100 // clist volume is in lots of 100 shares
)

const (
	emTimeout    = 10 * time.Second
	emRetries    = 3
	emRetryDelay = 500 * time.Millisecond
	emRequestGap = 200 * time.Millisecond
	emUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	emReferer    = "https://quote.eastmoney.com/"
)

// EastMoneyProvider fetches A-share quotes, k-lines, and board membership
// from the EastMoney public endpoints, with request pacing and bounded
// retry. Rate-limit policy lives here, never in the engine.
type EastMoneyProvider struct {
	Client  *http.Client
	lastReq time.Time
}

// NewEastMoneyProvider creates a provider with an optional proxy.
func NewEastMoneyProvider(proxyURL string) *EastMoneyProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &EastMoneyProvider{
		Client: &http.Client{Timeout: emTimeout, Transport: transport},
	}
}

func (p *EastMoneyProvider) Name() string { return "eastmoney" }

func (p *EastMoneyProvider) get(ctx context.Context, rawURL string) ([]byte, error) {
	if gap := emRequestGap - time.Since(p.lastReq); gap > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(gap):
		}
	}
	var lastErr error
	for attempt := 0; attempt < emRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(emRetryDelay):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", emUserAgent)
		req.Header.Set("Referer", emReferer)

		p.lastReq = time.Now()
		resp, err := p.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

// FetchDailySnapshot pages through the clist endpoint and returns the full
// universe plus the Shanghai Composite pseudo-symbol.
func (p *EastMoneyProvider) FetchDailySnapshot(ctx context.Context, date string) ([]model.InstrumentSnapshot, error) {
	var out []model.InstrumentSnapshot
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s?pn=%d&pz=%d&po=0&np=1&fltt=2&invt=2&fid=f12&fs=%s&fields=%s",
			emListURL, page, emPageSize, url.QueryEscape(emStockFS), emListFields)
		body, err := p.get(ctx, u)
		if err != nil {
			return nil, &ProviderError{Source: p.Name(), Err: fmt.Errorf("quote list page %d: %w", page, err)}
		}
		batch, total := parseQuoteList(body, date)
		out = append(out, batch...)
		if len(out) >= total || len(batch) == 0 {
			break
		}
	}
	if len(out) == 0 {
		return nil, &ProviderError{Source: p.Name(), Err: fmt.Errorf("empty quote list for %s", date)}
	}

	idx, err := p.fetchIndex(ctx, date)
	if err != nil {
		return nil, err
	}
	out = append(out, idx)
	return out, nil
}

// fetchIndex reads the Shanghai Composite daily bar via the kline endpoint
// so PrevClose is a real prior trading day, not a live field.
func (p *EastMoneyProvider) fetchIndex(ctx context.Context, date string) (model.InstrumentSnapshot, error) {
	bars, err := p.FetchHistory(ctx, model.IndexSymbol, date, 2)
	if err != nil {
		return model.InstrumentSnapshot{}, err
	}
	for i := range bars {
		if bars[i].Date == date {
			return bars[i], nil
		}
	}
	return model.InstrumentSnapshot{}, &ProviderError{
		Source: p.Name(), Err: fmt.Errorf("no index bar for %s", date),
	}
}

// FetchHistory returns up to lookbackDays daily bars ending at asOf,
// ascending by date.
func (p *EastMoneyProvider) FetchHistory(ctx context.Context, symbol, asOf string, lookbackDays int) ([]model.InstrumentSnapshot, error) {
	u := fmt.Sprintf("%s?secid=%s&klt=101&fqt=1&end=%s&lmt=%d&fields1=f1,f2,f3&fields2=f51,f52,f53,f54,f55,f56,f57",
		emKLineURL, secID(symbol), asOf, lookbackDays)
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, &ProviderError{Source: p.Name(), Err: fmt.Errorf("klines %s: %w", symbol, err)}
	}
	return parseKLines(symbol, body), nil
}

// SymbolsForSector lists concept boards and their members.
func (p *EastMoneyProvider) SymbolsForSector(ctx context.Context, date string) (map[string][]string, error) {
	u := fmt.Sprintf("%s?pn=1&pz=%d&po=1&np=1&fltt=2&fid=f3&fs=%s&fields=f12,f14",
		emListURL, emPageSize, url.QueryEscape(emBoardFS))
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, &ProviderError{Source: p.Name(), Err: fmt.Errorf("board list: %w", err)}
	}

	out := map[string][]string{}
	for _, row := range gjson.GetBytes(body, "data.diff").Array() {
		code := row.Get("f12").String()
		if code == "" {
			continue
		}
		mu := fmt.Sprintf("%s?pn=1&pz=%d&po=0&np=1&fltt=2&fid=f12&fs=%s&fields=f12",
			emListURL, emPageSize, url.QueryEscape("b:"+code))
		mbody, err := p.get(ctx, mu)
		if err != nil {
			return nil, &ProviderError{Source: p.Name(), Err: fmt.Errorf("board %s members: %w", code, err)}
		}
		for _, m := range gjson.GetBytes(mbody, "data.diff").Array() {
			if sym := m.Get("f12").String(); sym != "" {
				out[code] = append(out[code], sym)
			}
		}
	}
	return out, nil
}

// parseQuoteList extracts snapshots from a clist page. Returns the batch
// and the endpoint's reported total.
func parseQuoteList(body []byte, date string) ([]model.InstrumentSnapshot, int) {
	data := gjson.GetBytes(body, "data")
	total := int(data.Get("total").Int())
	var out []model.InstrumentSnapshot
	for _, row := range data.Get("diff").Array() {
		code := row.Get("f12").String()
		if code == "" {
			continue
		}
		name := row.Get("f14").String()
		board, ok := classifyBoard(code)
		if !ok {
			continue
		}
		out = append(out, model.InstrumentSnapshot{
			Symbol:    code,
			Date:      date,
			Name:      name,
			Board:     board,
			ST:        strings.Contains(name, "ST"),
			Open:      row.Get("f17").Float(),
			High:      row.Get("f15").Float(),
			Low:       row.Get("f16").Float(),
			Close:     row.Get("f2").Float(),
			PrevClose: row.Get("f18").Float(),
			Volume:    row.Get("f5").Float() * emVolLot,
			Turnover:  row.Get("f6").Float(),
		})
	}
	return out, total
}

// parseKLines decodes the comma-joined kline rows:
// date,open,close,high,low,volume,amount.
func parseKLines(symbol string, body []byte) []model.InstrumentSnapshot {
	var out []model.InstrumentSnapshot
	name := gjson.GetBytes(body, "data.name").String()
	board, _ := classifyBoard(symbol)
	var prevClose float64
	for _, k := range gjson.GetBytes(body, "data.klines").Array() {
		parts := strings.Split(k.String(), ",")
		if len(parts) < 7 {
			continue
		}
		s := model.InstrumentSnapshot{
			Symbol:    symbol,
			Date:      strings.ReplaceAll(parts[0], "-", ""),
			Name:      name,
			Board:     board,
			ST:        strings.Contains(name, "ST"),
			Open:      atof(parts[1]),
			Close:     atof(parts[2]),
			High:      atof(parts[3]),
			Low:       atof(parts[4]),
			Volume:    atof(parts[5]) * emVolLot,
			Turnover:  atof(parts[6]),
			PrevClose: prevClose,
		}
		prevClose = s.Close
		out = append(out, s)
	}
	return out
}

func atof(s string) float64 {
	var f float64
	fmt.Sscanf(s, "%f", &f)
	return f
}

// classifyBoard maps an A-share code prefix to its listing board.
func classifyBoard(code string) (model.Board, bool) {
	switch {
	case code == model.IndexSymbol:
		return model.BoardMain, true
	case strings.HasPrefix(code, "600"), strings.HasPrefix(code, "601"),
		strings.HasPrefix(code, "603"), strings.HasPrefix(code, "605"),
		strings.HasPrefix(code, "000"), strings.HasPrefix(code, "001"),
		strings.HasPrefix(code, "002"), strings.HasPrefix(code, "003"):
		return model.BoardMain, true
	case strings.HasPrefix(code, "300"), strings.HasPrefix(code, "301"):
		return model.BoardChiNext, true
	case strings.HasPrefix(code, "688"), strings.HasPrefix(code, "689"):
		return model.BoardSTAR, true
	case strings.HasPrefix(code, "83"), strings.HasPrefix(code, "87"),
		strings.HasPrefix(code, "88"), strings.HasPrefix(code, "43"),
		strings.HasPrefix(code, "92"):
		return model.BoardBSE, true
	default:
		return "", false
	}
}

// secID converts a bare symbol to EastMoney's market-prefixed id.
func secID(symbol string) string {
	switch {
	case symbol == model.IndexSymbol:
		return "1.000001"
	case strings.HasPrefix(symbol, "6"):
		return "1." + symbol
	default:
		return "0." + symbol
	}
}
