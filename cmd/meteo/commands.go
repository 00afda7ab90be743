package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meteo/backend/internal/config"
	"github.com/meteo/backend/internal/logging"
	"github.com/meteo/backend/internal/service"
	"github.com/meteo/backend/internal/view"
)

// fetcherFactory builds the fetcher a command searches through
type fetcherFactory func(cfg *config.Config, log *slog.Logger) view.Fetcher

func defaultFetcher(cfg *config.Config, log *slog.Logger) view.Fetcher {
	return service.NewWeatherClient(cfg.WeatherConfig(), service.WithLogger(log))
}

type options struct {
	details bool
	json    bool
	debug   bool
	lang    string
}

func rootCommand(stdout, stderr io.Writer, newFetcher fetcherFactory) *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:           "meteo",
		Short:         "Current weather from OpenWeatherMap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVar(&opts.details, "details", false, "Show the detailed breakdown")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.lang, "lang", "", "Description language (overrides OPENWEATHER_LANG)")

	cityCmd := &cobra.Command{
		Use:   "city <name...>",
		Short: "Look up weather by city name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return run(cmd, opts, newFetcher, func(v *view.SearchView) view.ViewState {
				return v.Search(name)
			})
		},
	}

	coordsCmd := &cobra.Command{
		Use:     "coords <lat> <lon>",
		Short:   "Look up weather at a position",
		Example: "  meteo coords 41.89 12.48\n  meteo coords -- -33.87 151.21",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[0])
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[1])
			}
			return run(cmd, opts, newFetcher, func(v *view.SearchView) view.ViewState {
				return v.SearchCoords(lat, lon)
			})
		},
	}

	rootCmd.AddCommand(cityCmd, coordsCmd)
	return rootCmd
}

// run drives a search view to completion and prints the card, then the
// details page when asked for
func run(cmd *cobra.Command, opts options, newFetcher fetcherFactory, start func(*view.SearchView) view.ViewState) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.lang != "" {
		cfg.Language = opts.lang
	}
	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	log := logging.New(level, cfg.LogFormat, cmd.ErrOrStderr())

	sv := view.NewSearchView(newFetcher(cfg, log), view.WithLogger(log))
	defer sv.Close()

	st := start(sv)
	if st.State == view.StateLoading {
		st, err = sv.Wait(cmd.Context())
		if err != nil {
			return err
		}
	}
	if st.Error != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), st.Error.Message)
		return errors.New(st.Error.Message)
	}
	if st.Summary == nil {
		return errors.New("no weather data")
	}

	out := cmd.OutOrStdout()
	if !opts.details {
		if opts.json {
			return writeJSON(out, st.Summary)
		}
		printSummary(out, *st.Summary)
		return nil
	}

	dv, ok := view.NewDetailsView(sv.ViewDetails())
	if !ok {
		return errors.New("no weather data")
	}
	details := dv.Render()
	if opts.json {
		return writeJSON(out, details)
	}
	printDetails(out, details)
	return nil
}

func printSummary(w io.Writer, s view.Summary) {
	fmt.Fprintf(w, "%s, %s\n", s.Name, s.Country)
	fmt.Fprintf(w, "  %s  %s (feels like %s)\n", s.Description, s.Temperature, s.FeelsLike)
	fmt.Fprintf(w, "  Humidity %s  Wind %s  Pressure %s  Visibility %s\n", s.Humidity, s.Wind, s.Pressure, s.Visibility)
}

func printDetails(w io.Writer, d view.Details) {
	fmt.Fprintf(w, "%s, %s\n", d.Name, d.Country)
	fmt.Fprintf(w, "  %s: %s\n", d.Condition, d.Description)
	fmt.Fprintf(w, "  Temperature  %s\n", d.Temperatures.Current)
	fmt.Fprintf(w, "  Feels like   %s\n", d.Temperatures.FeelsLike)
	fmt.Fprintf(w, "  Min / Max    %s / %s\n", d.Temperatures.Min, d.Temperatures.Max)
	fmt.Fprintf(w, "  Humidity     %s\n", d.Humidity)
	fmt.Fprintf(w, "  Pressure     %s\n", d.Pressure)
	fmt.Fprintf(w, "  Visibility   %s\n", d.Visibility)
	fmt.Fprintf(w, "  Wind         %s\n", d.Wind)
	fmt.Fprintf(w, "  Icon         %s\n", d.IconURL)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
