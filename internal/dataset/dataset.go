// Package dataset loads the country emissions CSV into an immutable in-memory
// table and serves per-country, per-year lookups.
//
// The file must carry at least the columns Country, Year and Per_Capita_CO2_kg;
// Total_CO2_kiloton is read when present. The dataset is loaded once per
// session and never mutated afterwards, so it is safe to share across
// concurrent readers.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrDataUnavailable marks a dataset that cannot be loaded at all: missing
// file, unreadable CSV, or a required column absent. Fatal to the caller —
// nothing can render without data.
var ErrDataUnavailable = errors.New("emissions data unavailable")

// Record is one observed (country, year) emissions row.
type Record struct {
	Country        string
	Year           int
	PerCapitaCO2Kg float64
	TotalCO2Kt     float64 // zero when the optional column is absent
}

// Dataset is the full record collection plus a country → ordered-by-year
// index. Immutable after Load.
type Dataset struct {
	records   []Record
	byCountry map[string][]Record
	countries []string

	// Load diagnostics, surfaced to the caller as non-fatal counts.
	SkippedRows  int // rows with unparseable Year or Per_Capita_CO2_kg
	ReplacedRows int // duplicate (country, year) rows overwritten (last wins)

	latestYear   int
	earliestYear int
}

// requiredColumns are the header names Load must find (case-sensitive, as
// written by the upstream dataset).
var requiredColumns = []string{"Country", "Year", "Per_Capita_CO2_kg"}

const optionalTotalColumn = "Total_CO2_kiloton"

// Load reads all records from the CSV at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, path, err)
	}
	return ds, nil
}

// Read parses CSV emissions data from r. Split out from Load so tests and
// alternative sources can feed readers directly.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	countryCol := cols["Country"]
	yearCol := cols["Year"]
	perCapCol := cols["Per_Capita_CO2_kg"]
	totalCol, hasTotal := cols[optionalTotalColumn]

	ds := &Dataset{byCountry: make(map[string][]Record)}
	seen := make(map[string]int) // "country\x00year" → index into records

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %v", err)
		}
		if len(row) <= perCapCol || len(row) <= yearCol || len(row) <= countryCol {
			ds.SkippedRows++
			continue
		}

		country := strings.TrimSpace(row[countryCol])
		year, yearErr := strconv.Atoi(strings.TrimSpace(row[yearCol]))
		perCap, perCapErr := strconv.ParseFloat(strings.TrimSpace(row[perCapCol]), 64)
		if country == "" || yearErr != nil || perCapErr != nil {
			ds.SkippedRows++
			continue
		}

		rec := Record{Country: country, Year: year, PerCapitaCO2Kg: perCap}
		if hasTotal && len(row) > totalCol {
			// Optional column: a blank or malformed value is not a reason to
			// drop the row.
			if total, err := strconv.ParseFloat(strings.TrimSpace(row[totalCol]), 64); err == nil {
				rec.TotalCO2Kt = total
			}
		}

		key := country + "\x00" + strconv.Itoa(year)
		if i, dup := seen[key]; dup {
			ds.records[i] = rec
			ds.ReplacedRows++
			continue
		}
		seen[key] = len(ds.records)
		ds.records = append(ds.records, rec)
	}

	if len(ds.records) == 0 {
		return nil, fmt.Errorf("no usable rows")
	}

	ds.buildIndex()
	return ds, nil
}

// buildIndex derives the per-country series (ascending by year), the sorted
// country list, and the year bounds.
func (d *Dataset) buildIndex() {
	d.earliestYear = d.records[0].Year
	d.latestYear = d.records[0].Year
	for _, rec := range d.records {
		d.byCountry[rec.Country] = append(d.byCountry[rec.Country], rec)
		if rec.Year > d.latestYear {
			d.latestYear = rec.Year
		}
		if rec.Year < d.earliestYear {
			d.earliestYear = rec.Year
		}
	}
	for country, series := range d.byCountry {
		sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
		d.countries = append(d.countries, country)
	}
	sort.Strings(d.countries)
}

// Countries returns the distinct country names, lexicographically sorted.
// The returned slice is a copy; callers may mutate it freely.
func (d *Dataset) Countries() []string {
	out := make([]string, len(d.countries))
	copy(out, d.countries)
	return out
}

// SeriesFor returns all records for country, ascending by year. Empty for an
// unknown country. The returned slice must be treated as read-only.
func (d *Dataset) SeriesFor(country string) []Record {
	return d.byCountry[country]
}

// Lookup returns the stored per-capita value for an exact (country, year)
// match.
func (d *Dataset) Lookup(country string, year int) (float64, bool) {
	series := d.byCountry[country]
	i := sort.Search(len(series), func(i int) bool { return series[i].Year >= year })
	if i < len(series) && series[i].Year == year {
		return series[i].PerCapitaCO2Kg, true
	}
	return 0, false
}

// Records returns every record in load order. Read-only.
func (d *Dataset) Records() []Record {
	return d.records
}

// Len reports the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// LatestYear is the most recent year present anywhere in the dataset.
func (d *Dataset) LatestYear() int { return d.latestYear }

// EarliestYear is the oldest year present anywhere in the dataset.
func (d *Dataset) EarliestYear() int { return d.earliestYear }
