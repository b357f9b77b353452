// Package main provides the drive-time analysis command line tool.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/drivetime/drivetime/internal/config"
	"github.com/drivetime/drivetime/internal/drivetime"
	"github.com/drivetime/drivetime/internal/maps"
	"github.com/drivetime/drivetime/internal/maps/googlemaps"
)

func main() {
	originArg := flag.String("origin", "", "origin as free text or \"lat,lng\" (required)")
	destArg := flag.String("destination", "", "destination as free text or \"lat,lng\" (required)")
	dateArg := flag.String("date", "", "analysis date YYYY-MM-DD (default: today)")
	startArg := flag.String("start", "06:00", "window start HH:MM")
	endArg := flag.String("end", "11:00", "window end HH:MM")
	intervalArg := flag.Int("interval", drivetime.DefaultInterval, "sampling interval in minutes")
	tzArg := flag.String("tz", drivetime.DefaultTimezone, "IANA timezone for the window")
	asciiArg := flag.Bool("ascii", true, "render the ASCII chart")
	saveMapArg := flag.String("save-map", "", "save a static trip map PNG to this path")
	yesArg := flag.Bool("yes", false, "accept the first geocoding candidate without prompting")
	verboseArg := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.WarnLevel)
	if *verboseArg {
		log = log.Level(zerolog.DebugLevel)
	}

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *originArg == "" || *destArg == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:  cfg.GoogleMapsAPIKey,
		BaseURL: cfg.GoogleMapsBaseURL,
		Timeout: cfg.ProviderTimeout,
		Logger:  log,
	})

	ctx := context.Background()

	origin, err := resolveLocation(ctx, client, "origin", *originArg, *yesArg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not resolve origin")
	}
	destination, err := resolveLocation(ctx, client, "destination", *destArg, *yesArg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not resolve destination")
	}

	date := *dateArg
	if date == "" {
		loc, locErr := time.LoadLocation(*tzArg)
		if locErr != nil {
			log.Fatal().Err(locErr).Msg("invalid timezone")
		}
		date = time.Now().In(loc).Format("2006-01-02")
	}

	if *saveMapArg != "" {
		if err := saveStaticMap(ctx, client, origin, destination, *saveMapArg); err != nil {
			log.Error().Err(err).Msg("could not save static map")
		} else {
			fmt.Printf("Saved trip map to %s\n", *saveMapArg)
		}
	}

	svc := drivetime.NewService(drivetime.ServiceConfig{
		Provider: client,
		Logger:   log,
	})

	fmt.Printf("Analyzing drive times %s -> %s on %s (%s - %s, every %d min, %s)\n\n",
		origin, destination, date, *startArg, *endArg, *intervalArg, *tzArg)

	analysis, err := svc.Analyze(ctx, drivetime.AnalyzeRequest{
		Origin:          origin,
		Destination:     destination,
		Date:            date,
		Start:           *startArg,
		End:             *endArg,
		IntervalMinutes: *intervalArg,
		Timezone:        *tzArg,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	printResults(analysis, *asciiArg)
}

// resolveLocation turns a CLI argument into a coordinate. A "lat,lng"
// literal is used directly; anything else is geocoded, with candidate
// selection when the query is ambiguous.
func resolveLocation(ctx context.Context, geocoder maps.Geocoder, label, arg string, autoAccept bool) (maps.Coordinate, error) {
	if c, err := maps.ParseCoordinate(arg); err == nil {
		return c, nil
	}

	places, err := geocoder.Geocode(ctx, arg)
	if err != nil {
		if errors.Is(err, maps.ErrNoResults) {
			return maps.Coordinate{}, fmt.Errorf("no matches for %s %q", label, arg)
		}
		return maps.Coordinate{}, err
	}

	fmt.Printf("Candidates for %s %q:\n", label, arg)
	for i, p := range places {
		fmt.Printf("  %d. %s (%s)\n", i+1, p.FormattedAddress, p.Location)
	}

	if autoAccept || len(places) == 1 {
		fmt.Printf("Using: %s\n\n", places[0].FormattedAddress)
		return places[0].Location, nil
	}

	fmt.Printf("Select a candidate [1-%d], or q to quit: ", len(places))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return maps.Coordinate{}, fmt.Errorf("reading selection: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "q" || line == "Q" {
		return maps.Coordinate{}, errors.New("aborted")
	}
	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(places) {
		return maps.Coordinate{}, fmt.Errorf("invalid selection %q", line)
	}

	fmt.Printf("Using: %s\n\n", places[idx-1].FormattedAddress)
	return places[idx-1].Location, nil
}

// saveStaticMap downloads the trip overview map image to path.
func saveStaticMap(ctx context.Context, client *googlemaps.Client, origin, destination maps.Coordinate, path string) error {
	mapURL := client.StaticMapURL(origin, destination)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapURL, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("static map request returned status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

func printResults(analysis *drivetime.Analysis, showChart bool) {
	fmt.Println("Departure   Optimistic   Pessimistic   Average")
	fmt.Println("---------   ----------   -----------   -------")
	for _, entry := range analysis.Series {
		fmt.Printf("%-9s   %7.1f      %8.1f      %6.1f\n",
			entry.Departure.Format("15:04"),
			entry.OptimisticMin,
			entry.PessimisticMin,
			entry.AverageMin,
		)
	}
	fmt.Println()

	if showChart {
		fmt.Println(analysis.Chart)
	}

	insight := analysis.Insight
	fmt.Printf("Best departure:  %s (%.1f min average)\n",
		insight.Best.Departure.Format("15:04"), insight.Best.AverageMin)
	fmt.Printf("Worst departure: %s (%.1f min average)\n",
		insight.Worst.Departure.Format("15:04"), insight.Worst.AverageMin)
	fmt.Printf("Leaving at the right time saves %.1f minutes.\n", insight.DifferenceMin)

	if analysis.FailedTasks > 0 {
		fmt.Printf("\nWarning: %d queries failed; %d departure times were dropped.\n",
			analysis.FailedTasks, analysis.FailedPoints)
	}
}
