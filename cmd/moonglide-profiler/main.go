package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/thurmanmarka/moonglide"
	"github.com/thurmanmarka/moonglide/internal/ephemeris"
	"github.com/thurmanmarka/moonglide/internal/horizon"
)

// Two modes:
//
// -refcsv compares moonrise/moonset against a reference table:
//
//	date,rise,set
//	2025-01-01,10:42,21:30
//	2025-01-02,11:05,
//
// date is YYYY-MM-DD, rise/set are local HH:MM[:SS] in -tz; an empty field
// or "--" means no event that day.
//
// -survey evaluates both lunar models over a grid of times and latitudes
// and reports how far apart they are.
func main() {
	log.SetFlags(0)

	var (
		lat     = flag.Float64("lat", 0, "latitude in degrees (north positive)")
		lon     = flag.Float64("lon", 0, "longitude in degrees (east positive, west negative)")
		tzName  = flag.String("tz", "UTC", "IANA time zone name (e.g. America/Phoenix)")
		refCSV  = flag.String("refcsv", "", "path to reference moonrise/moonset CSV file (date,rise,set)")
		outCSV  = flag.String("outcsv", "", "optional path to write per-row error CSV")
		verbose = flag.Bool("verbose", false, "log per-day errors instead of only summary")

		survey  = flag.Bool("survey", false, "run the model divergence survey instead of a CSV comparison")
		from    = flag.String("from", "2025-01-01", "survey start date (YYYY-MM-DD, UTC)")
		days    = flag.Int("days", 365, "survey length in days")
		step    = flag.Duration("step", 7*time.Hour+13*time.Minute, "survey time step")
		latStep = flag.Float64("latstep", 15, "survey latitude step in degrees")
		maxLat  = flag.Float64("maxlat", 75, "survey latitude limit in degrees")
	)

	flag.Parse()

	if *survey {
		start, err := time.Parse("2006-01-02", *from)
		if err != nil {
			log.Fatalf("invalid -from %q: %v", *from, err)
		}
		runSurvey(start, *days, *step, *latStep, *maxLat, *lon)
		return
	}

	if *refCSV == "" {
		log.Fatalf("missing -refcsv (path to reference CSV) or -survey")
	}

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Fatalf("failed to load timezone %q: %v", *tzName, err)
	}

	if *lat == 0 && *lon == 0 {
		log.Println("warning: lat=0 lon=0 (Gulf of Guinea). Did you mean to set -lat/-lon?")
	}

	runRefCSV(moonglide.Observer{Latitude: *lat, Longitude: *lon}, loc, *refCSV, *outCSV, *verbose)
}

func runRefCSV(obs moonglide.Observer, loc *time.Location, refPath, outPath string, verbose bool) {
	var outWriter *csv.Writer

	if outPath != "" {
		outFile, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("failed to create outcsv %q: %v", outPath, err)
		}
		defer outFile.Close()

		outWriter = csv.NewWriter(outFile)
		defer outWriter.Flush()

		if err := outWriter.Write([]string{
			"date",
			"rise_signed",
			"set_signed",
			"rise_mismatch",
			"set_mismatch",
			"phase",
			"illumination",
			"waxing",
		}); err != nil {
			log.Fatalf("failed to write outcsv header: %v", err)
		}
	}

	f, err := os.Open(refPath)
	if err != nil {
		log.Fatalf("failed to open refcsv %q: %v", refPath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // allow variable, we validate

	records, err := r.ReadAll()
	if err != nil {
		log.Fatalf("failed to read CSV: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("empty CSV file")
	}

	// If first row looks like a header, skip it.
	startIdx := 0
	if len(records[0]) >= 1 && strings.EqualFold(records[0][0], "date") {
		startIdx = 1
	}

	var (
		riseErrs, setErrs []float64
		mismatches        int
		skipped           int
		totalRows         int
	)

	for i := startIdx; i < len(records); i++ {
		row := records[i]
		totalRows++

		if len(row) < 2 {
			log.Printf("row %d: expected date,rise,set, got %d columns, skipping", i+1, len(row))
			skipped++
			continue
		}
		for len(row) < 3 {
			row = append(row, "")
		}
		dateStr := strings.TrimSpace(row[0])

		date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			log.Printf("row %d: invalid date %q: %v, skipping", i+1, dateStr, err)
			skipped++
			continue
		}

		refRise, hasRise, err := parseLocalTime(date, row[1], loc)
		if err != nil {
			log.Printf("row %d: invalid rise time %q: %v, skipping", i+1, row[1], err)
			skipped++
			continue
		}
		refSet, hasSet, err := parseLocalTime(date, row[2], loc)
		if err != nil {
			log.Printf("row %d: invalid set time %q: %v, skipping", i+1, row[2], err)
			skipped++
			continue
		}

		mt, err := moonglide.ComputeMoonTimes(obs, date)
		if err != nil {
			log.Printf("row %d: moonglide error: %v, skipping", i+1, err)
			skipped++
			continue
		}

		riseSigned := diffMinutesSigned(mt.Rise, refRise, hasRise)
		setSigned := diffMinutesSigned(mt.Set, refSet, hasSet)
		riseErrs = append(riseErrs, riseSigned)
		setErrs = append(setErrs, setSigned)

		riseMismatch := (mt.Rise != nil) != hasRise
		setMismatch := (mt.Set != nil) != hasSet
		if riseMismatch || setMismatch {
			mismatches++
		}

		if verbose {
			fmt.Printf("%s: rise err=%.2f min (got=%s ref=%s), set err=%.2f min (got=%s ref=%s)\n",
				dateStr,
				riseSigned, clock(mt.Rise), row[1],
				setSigned, clock(mt.Set), row[2])
		}

		if outWriter != nil {
			noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, loc)
			var phase, illum, waxing string
			if md, err := moonglide.ComputeMoonData(obs, noon); err == nil {
				phase = fmt.Sprintf("%.6f", md.Phase)
				illum = fmt.Sprintf("%.6f", md.Illumination)
				waxing = fmt.Sprintf("%t", md.Waxing)
			}
			rec := []string{
				dateStr,
				fmt.Sprintf("%.6f", riseSigned),
				fmt.Sprintf("%.6f", setSigned),
				fmt.Sprintf("%t", riseMismatch),
				fmt.Sprintf("%t", setMismatch),
				phase,
				illum,
				waxing,
			}
			if err := outWriter.Write(rec); err != nil {
				log.Printf("row %d: failed to write outcsv: %v", i+1, err)
			}
		}
	}

	fmt.Println("=== moonglide profiler summary ===")
	fmt.Printf("Lat/Lon: %.4f / %.4f\n", obs.Latitude, obs.Longitude)
	fmt.Printf("TZ:      %s\n", loc.String())
	fmt.Printf("Rows:    %d (processed), %d skipped\n", totalRows-skipped, skipped)
	fmt.Printf("Event presence mismatches: %d\n", mismatches)

	summarize(riseErrs).print(os.Stdout, "Rise signed error", "minutes, our - ref")
	summarize(setErrs).print(os.Stdout, "Set signed error", "minutes, our - ref")
	summarize(absAll(riseErrs)).print(os.Stdout, "Rise absolute error", "minutes")
	summarize(absAll(setErrs)).print(os.Stdout, "Set absolute error", "minutes")
}

func runSurvey(start time.Time, days int, step time.Duration, latStep, maxAbsLat, lon float64) {
	if step <= 0 || latStep <= 0 {
		log.Fatalf("-step and -latstep must be positive")
	}

	precise := ephemeris.Precise{}
	approx := ephemeris.Approximate{}
	end := start.AddDate(0, 0, days)

	var seps, dDist, dIllum []float64
	failures := 0
	for t := start; t.Before(end); t = t.Add(step) {
		for lat := -maxAbsLat; lat <= maxAbsLat; lat += latStep {
			in := ephemeris.Input{Time: t, Latitude: lat, Longitude: lon}
			p, perr := precise.Evaluate(in)
			a, aerr := approx.Evaluate(in)
			if perr != nil || aerr != nil {
				failures++
				continue
			}
			seps = append(seps, horizon.Separation(p.AzimuthDeg, p.AltitudeDeg, a.AzimuthDeg, a.AltitudeDeg))
			dDist = append(dDist, a.DistanceKm-p.DistanceKm)
			dIllum = append(dIllum, a.Phase.Illumination-p.Phase.Illumination)
		}
	}

	fmt.Println("=== moonglide model divergence survey ===")
	fmt.Printf("Window:    %s .. %s, step %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"), step)
	fmt.Printf("Latitudes: ±%.1f° every %.1f°, lon %.4f\n", maxAbsLat, latStep, lon)
	fmt.Printf("Samples:   %d, failures %d\n", len(seps), failures)

	sepSummary := summarize(seps)
	sepSummary.print(os.Stdout, "Sky separation", "degrees")
	summarize(dDist).print(os.Stdout, "Distance delta", "km, approximate - precise")
	summarize(dIllum).print(os.Stdout, "Illumination delta", "fraction, approximate - precise")

	if sepSummary.Max > 1 {
		fmt.Printf("\nwarning: max separation %.3f° exceeds the default 1° divergence threshold\n", sepSummary.Max)
	}
}

func parseLocalTime(date time.Time, hhmm string, loc *time.Location) (time.Time, bool, error) {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" || hhmm == "--" || strings.EqualFold(hhmm, "none") {
		return time.Time{}, false, nil
	}

	// Expect HH:MM (optionally HH:MM:SS).
	layout := "15:04"
	if strings.Count(hhmm, ":") == 2 {
		layout = "15:04:05"
	}

	parsed, err := time.ParseInLocation(layout, hhmm, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	// Combine parsed clock time with date.
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc), true, nil
}

func clock(t *time.Time) string {
	if t == nil {
		return "--"
	}
	return t.Format("15:04")
}

func absAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = math.Abs(v)
	}
	return out
}
