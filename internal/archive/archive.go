// Package archive ingests remote data products. A Product is the partial
// metadata record an archive search returns; a Fetcher turns its access URL
// into bytes. Product metadata only fills trace fields that ingestion left
// empty, so file headers always win over catalog records.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spectrasuite/internal/ingest"
	"spectrasuite/internal/provenance"
	"spectrasuite/internal/session"
	"spectrasuite/internal/spectrum"
)

// Product is one archive search result.
type Product struct {
	Provider           string
	ProductID          string
	Title              string
	Target             string
	AccessURL          string
	Instrument         string
	Telescope          string
	RA                 *float64
	Dec                *float64
	ResolvingPower     *float64
	WaveRangeNm        *[2]float64
	WavelengthStandard string // "air", "vacuum", "mixed", "none", or ""
	FluxUnits          string
	PipelineVersion    string
	Citation           string
	DOI                string
}

// Fetcher retrieves the bytes behind an access URL. Implementations wrap
// network failures with ingest.ErrTransport.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher downloads over http(s) with a bounded timeout.
type HTTPFetcher struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
}

// NewHTTPFetcher builds a fetcher with a 30 second default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Timeout: 30 * time.Second}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrTransport, rawURL, "fetch", "invalid url", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ingest.Wrap(ingest.ErrTransport, rawURL, "fetch",
			fmt.Sprintf("unsupported scheme %q", parsed.Scheme), nil)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrTransport, rawURL, "fetch", "build request", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrTransport, rawURL, "fetch", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ingest.Wrap(ingest.ErrTransport, rawURL, "fetch",
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrTransport, rawURL, "fetch", "read body", err)
	}
	return body, nil
}

// IngestOptions mirror the session ingest knobs for archive downloads.
type IngestOptions struct {
	HDU             int
	AllowDuplicates bool
}

// IngestProduct downloads a product and runs it through the full pipeline:
// FITS first, ASCII as fallback, canonicalize, merge the product's catalog
// metadata into fields the headers left empty, then register. A duplicate
// rejection still returns the canonical result, matching session.IngestBytes.
func IngestProduct(ctx context.Context, sess *session.Session, product Product, fetcher Fetcher, opts IngestOptions, logger *slog.Logger) (session.Outcome, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	raw, err := fetcher.Fetch(ctx, product.AccessURL)
	if err != nil {
		return session.Outcome{}, err
	}
	logger.Info("archive product fetched",
		slog.String("provider", product.Provider),
		slog.String("product", product.ProductID),
		slog.Int("bytes", len(raw)))

	filename := product.ProductID
	if filename == "" {
		filename = product.AccessURL
	}
	result, err := ingest.LoadFITS(raw, filename, ingest.FITSOptions{HDU: opts.HDU})
	if err != nil {
		if errors.Is(err, ingest.ErrExtensionAmbiguous) {
			return session.Outcome{}, err
		}
		ascii, asciiErr := ingest.LoadASCII(raw, filename)
		if asciiErr != nil {
			return session.Outcome{}, ingest.Wrap(ingest.ErrParse, filename, "ingest",
				"neither binary nor text parse succeeded", errors.Join(err, asciiErr))
		}
		result = ascii
	}

	mergeProduct(result, product)

	spec, err := ingest.Canonicalize(result)
	if err != nil {
		return session.Outcome{}, err
	}
	// The fetch record closes the audit trail, after any conversion events
	// canonicalization added.
	spec.AppendEvent(provenance.New(provenance.FetchArchiveProduct{
		Provider:  product.Provider,
		ProductID: product.ProductID,
		URL:       product.AccessURL,
	}))

	id, err := sess.Register(spec, session.RegisterOptions{AllowDuplicate: opts.AllowDuplicates})
	if err != nil {
		return session.Outcome{Spectrum: spec}, err
	}
	return session.Outcome{TraceID: id, Spectrum: spec}, nil
}

// mergeProduct fills only the metadata fields ingestion left empty; the
// wavelength standard is the exception, since catalog records are
// authoritative when the file itself was silent.
func mergeProduct(result *ingest.Result, product Product) {
	m := &result.Metadata
	m.Provider = product.Provider
	m.ProductID = product.ProductID

	fillString(&m.Title, product.Title)
	fillString(&m.Target, product.Target)
	fillString(&m.Instrument, product.Instrument)
	fillString(&m.Telescope, product.Telescope)
	fillString(&m.FluxUnits, product.FluxUnits)
	fillString(&m.PipelineVersion, product.PipelineVersion)
	fillString(&m.Citation, product.Citation)
	fillString(&m.DOI, product.DOI)
	if m.RA == nil {
		m.RA = product.RA
	}
	if m.Dec == nil {
		m.Dec = product.Dec
	}
	if m.ResolvingPower == nil {
		m.ResolvingPower = product.ResolvingPower
	}
	if m.WaveRangeNm == nil {
		// Canonicalization later replaces this with the measured coverage,
		// so the catalog range only survives until the axis is known.
		m.WaveRangeNm = product.WaveRangeNm
	}
	if product.AccessURL != "" {
		m.EnsureMaps()
		m.URLs["access"] = product.AccessURL
	}

	if standard, isAir, ok := normalizeStandard(product.WavelengthStandard); ok {
		if m.WavelengthStandard == spectrum.StandardVacuum || m.WavelengthStandard == "" ||
			m.WavelengthStandard == spectrum.StandardUnknown {
			// Header-level air flags already set IsAir; the catalog value
			// only overrides defaults and unknowns.
			if !result.IsAir {
				m.WavelengthStandard = standard
				result.IsAir = isAir
			}
		}
	}

	label := product.Title
	if label == "" {
		label = product.Target
	}
	if label != "" {
		result.Label = label
	}
}

func fillString(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

// normalizeStandard maps provider spellings onto the internal vocabulary:
// "mixed" means unknown, "none" means no wavelength standard applies at all.
func normalizeStandard(raw string) (spectrum.WavelengthStandard, bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "air":
		return spectrum.StandardAir, true, true
	case "vacuum", "vac":
		return spectrum.StandardVacuum, false, true
	case "mixed":
		return spectrum.StandardUnknown, false, true
	case "none":
		return "", false, true
	}
	return "", false, false
}
