package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide"
	"github.com/thurmanmarka/moonglide/internal/config"
	"github.com/thurmanmarka/moonglide/internal/logger"
	"github.com/thurmanmarka/moonglide/internal/metrics"
	"github.com/thurmanmarka/moonglide/internal/server"
)

func main() {
	log.SetFlags(0)

	// No subcommand, or flags first: report where the Moon is now.
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		runNow(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "now":
		runNow(os.Args[2:])
	case "times":
		runTimes(os.Args[2:])
	case "bearing":
		runBearing(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `moonglide – where is the Moon

Usage:
  moonglide [now] [flags]      # azimuth, altitude, phase, illumination, distance
  moonglide times [flags]      # moonrise / moonset for a local date
  moonglide bearing [flags]    # turn/tilt from a device direction to the Moon
  moonglide serve [flags]      # REST + websocket + metrics server

Common flags:
  -config string   path to a YAML config file
  -lat, -lon       observer in degrees (north / east positive)
  -tz string       IANA time zone for local dates
  -quantum dur     time grid step (default 10s)
  -debug           debug logging
  -json            JSON output (now, times, bearing)

Run "moonglide <subcommand> -h" for the rest.
`)
}

// env is what every subcommand needs after flag parsing.
type env struct {
	cfg  *config.Config
	loc  *time.Location
	log  *zap.Logger
	calc *moonglide.Calculator
	obs  moonglide.Observer
}

func setup(fs *flag.FlagSet, f *config.Flags, args []string, calcOpts ...moonglide.Option) env {
	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := config.LoadWithFlags(f)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Observer.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: os.Stderr,
		JSON:    cfg.Logging.JSON,
	})

	opts := []moonglide.Option{
		moonglide.WithLogger(zl),
		moonglide.WithQuantizer(cfg.Engine.Quantum, time.Time{}),
		moonglide.WithDivergenceThreshold(cfg.Engine.DivergenceThresholdDeg),
	}
	opts = append(opts, calcOpts...)

	return env{
		cfg:  cfg,
		loc:  loc,
		log:  zl,
		calc: moonglide.New(opts...),
		obs: moonglide.Observer{
			Latitude:  cfg.Observer.Latitude,
			Longitude: cfg.Observer.Longitude,
		},
	}
}

func parseWhen(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Now().In(loc)
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	var parseErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t
		}
		parseErr = err
	}
	log.Fatalf("could not parse -time %q: %v", s, parseErr)
	return time.Time{}
}

// ---------------------
// now
// ---------------------

func runNow(args []string) {
	fs := flag.NewFlagSet("now", flag.ExitOnError)
	f := config.Bind(fs)
	timeStr := fs.String("time", "", "time in RFC3339 or 'YYYY-MM-DDTHH:MM' (defaults to now)")
	jsonOut := fs.Bool("json", false, "output result as JSON")

	e := setup(fs, f, args)
	defer e.log.Sync()

	md, err := e.calc.ComputeMoonData(e.obs, parseWhen(*timeStr, e.loc))
	if err != nil {
		log.Fatalf("error computing moon data: %v", err)
	}

	if *jsonOut {
		printJSON(md)
		return
	}

	trend := "waning"
	if md.Waxing {
		trend = "waxing"
	}
	fmt.Printf("Moon for lat=%.6f lon=%.6f at %s\n\n", e.obs.Latitude, e.obs.Longitude, md.Time.In(e.loc).Format(time.RFC3339))
	fmt.Printf("  Azimuth      : %7.2f°  (%s)\n", md.Azimuth, compassPoint(md.Azimuth))
	fmt.Printf("  Altitude     : %7.2f°\n", md.Altitude)
	fmt.Printf("  Distance     : %.0f km\n", md.Distance)
	fmt.Printf("  Phase        : %.3f (%s, %.1f days)\n", md.Phase, trend, md.AgeDays)
	fmt.Printf("  Illumination : %.1f%%\n", md.Illumination*100)
}

// ---------------------
// times
// ---------------------

func runTimes(args []string) {
	fs := flag.NewFlagSet("times", flag.ExitOnError)
	f := config.Bind(fs)
	dateS := fs.String("date", "", "date in YYYY-MM-DD (defaults to today in -tz)")
	days := fs.Int("days", 1, "number of consecutive days")
	jsonOut := fs.Bool("json", false, "output result as JSON")

	e := setup(fs, f, args)
	defer e.log.Sync()

	start := parseWhen(*dateS, e.loc)

	type dayTimes struct {
		Date string `json:"date"`
		moonglide.MoonTimes
	}
	var out []dayTimes
	for i := 0; i < *days; i++ {
		date := time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, e.loc)
		mt, err := e.calc.ComputeMoonTimes(e.obs, date)
		if err != nil {
			log.Fatalf("error computing moon times: %v", err)
		}
		out = append(out, dayTimes{Date: date.Format("2006-01-02"), MoonTimes: mt})
	}

	if *jsonOut {
		printJSON(out)
		return
	}

	fmt.Printf("Moon rise/set for lat=%.6f lon=%.6f (%s)\n\n", e.obs.Latitude, e.obs.Longitude, e.loc)
	for _, d := range out {
		fmt.Printf("%s  rise %-8s  set %-8s\n", d.Date, clock(d.Rise), clock(d.Set))
	}
}

func clock(t *time.Time) string {
	if t == nil {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

// ---------------------
// bearing
// ---------------------

func runBearing(args []string) {
	fs := flag.NewFlagSet("bearing", flag.ExitOnError)
	f := config.Bind(fs)
	devAz := fs.Float64("az", 0, "device azimuth in degrees clockwise from north")
	devAlt := fs.Float64("alt", 0, "device altitude in degrees above the horizon")
	timeStr := fs.String("time", "", "time in RFC3339 or 'YYYY-MM-DDTHH:MM' (defaults to now)")
	jsonOut := fs.Bool("json", false, "output result as JSON")

	e := setup(fs, f, args)
	defer e.log.Sync()

	now := parseWhen(*timeStr, e.loc)
	md, err := e.calc.ComputeMoonData(e.obs, now)
	if err != nil {
		log.Fatalf("error computing moon data: %v", err)
	}
	b, err := moonglide.ComputeDeviceRelativeBearing(*devAz, *devAlt, md.Azimuth, md.Altitude)
	if err != nil {
		log.Fatalf("error computing bearing: %v", err)
	}
	cue := moonglide.PointingCue(b, now, now)

	if *jsonOut {
		printJSON(struct {
			moonglide.Bearing
			Aligned bool `json:"aligned"`
		}{b, cue.Aligned})
		return
	}

	turn := "right"
	if b.AzimuthDeltaDeg < 0 {
		turn = "left"
	}
	tilt := "up"
	if b.AltitudeDeltaDeg < 0 {
		tilt = "down"
	}
	fmt.Printf("Moon at az %.1f° alt %.1f°\n", md.Azimuth, md.Altitude)
	fmt.Printf("Turn %s %.1f°, tilt %s %.1f° (%.1f° away)\n",
		turn, abs(b.AzimuthDeltaDeg), tilt, abs(b.AltitudeDeltaDeg), b.AngularSeparationDeg)
	if cue.Aligned {
		fmt.Println("On target.")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ---------------------
// serve
// ---------------------

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	f := config.Bind(fs)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	e := setup(fs, f, args, moonglide.WithDivergenceRecorder(m))
	defer e.log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(e.calc, e.obs, e.loc, e.cfg.Server,
		server.WithLogger(e.log),
		server.WithMetrics(m, reg),
	)
	if err := srv.Run(ctx); err != nil {
		e.log.Fatal("server stopped", zap.Error(err))
	}
}

// ---------------------
// Shared helpers
// ---------------------

var compassPoints = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

func compassPoint(az float64) string {
	i := int((az+11.25)/22.5) % len(compassPoints)
	return compassPoints[i]
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("failed to encode JSON: %v", err)
	}
}
