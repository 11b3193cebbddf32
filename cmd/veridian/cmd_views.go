package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/view"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show live air quality for a city",
	RunE:  runCurrent,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the AQI forecast with its summary",
	RunE:  runForecast,
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict AQI for a date from the same day in past years",
	RunE:  runPredict,
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List cities available for prediction",
	RunE:  runCities,
}

func init() {
	currentCmd.Flags().String("city", "", "city name (defaults to DEFAULT_CITY)")
	predictCmd.Flags().String("date", "", "target date, YYYY-MM-DD")
	predictCmd.Flags().String("city", "", "city name (defaults to DEFAULT_CITY)")

	rootCmd.AddCommand(currentCmd, forecastCmd, predictCmd, citiesCmd)
}

func runCurrent(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	city, _ := cmd.Flags().GetString("city")
	if !cmd.Flags().Changed("city") {
		city = a.cfg.DefaultCity
	}

	sess := a.store.Create()
	ctx := cmd.Context()
	st := sess.Insights.Wait(ctx, a.views.SearchInsights(ctx, sess, city))
	if err := failed(st); err != nil {
		return err
	}
	v := view.NewInsightsView(st)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	renderInsights(cmd.OutOrStdout(), v)
	return nil
}

func renderInsights(w io.Writer, v view.InsightsView) {
	r := v.State.Data
	fmt.Fprintf(w, "%s\n", r.Location)
	fmt.Fprintf(w, "  AQI        %.0f  %s\n", r.AQI, v.Category.Label)
	fmt.Fprintf(w, "  PM2.5      %.1f µg/m³\n", r.PM25)
	fmt.Fprintf(w, "  PM10       %.1f µg/m³\n", r.PM10)
	fmt.Fprintf(w, "  NO2        %.1f µg/m³\n", r.NO2)
	fmt.Fprintf(w, "  Weather    %.0f°C, %s\n", r.Temp, r.Condition)
	fmt.Fprintf(w, "  Humidity   %.0f%%\n", r.Humidity)
	fmt.Fprintf(w, "  Wind       %.1f km/h\n", r.WindSpeed)
	if a := v.Advisory; a != nil {
		fmt.Fprintf(w, "\nHealth advisory: %s\n", a.Message)
	}
}

func runForecast(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	sess := a.store.Create()
	ctx := cmd.Context()
	st := sess.Forecast.Wait(ctx, a.views.LoadForecast(ctx, sess))
	if err := failed(st); err != nil {
		return err
	}
	v := view.NewForecastView(st)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	renderForecast(cmd.OutOrStdout(), v)
	return nil
}

func renderForecast(w io.Writer, v view.ForecastView) {
	for _, d := range v.Days {
		bar := strings.Repeat("█", int(d.SeverityWidth/5))
		fmt.Fprintf(w, "%-10s %4.0f  %s\n", d.Day, d.AQI, bar)
	}
	if s := v.Summary; s != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Safe days  %d/%d\n", s.SafeDays, s.Days)
		fmt.Fprintf(w, "Peak       %s\n", s.PeakLabel)
		fmt.Fprintf(w, "Trend      %s\n", s.Trend)
	}
}

func runPredict(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	date, _ := cmd.Flags().GetString("date")
	city, _ := cmd.Flags().GetString("city")
	if !cmd.Flags().Changed("city") {
		city = a.cfg.DefaultCity
	}

	sess := a.store.Create()
	ctx := cmd.Context()
	st := sess.Prediction.Wait(ctx, a.views.Predict(ctx, sess, date, city))
	if err := failed(st); err != nil {
		return err
	}
	v := view.NewPredictionView(st)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	renderPrediction(cmd.OutOrStdout(), v)
	return nil
}

func renderPrediction(w io.Writer, v view.PredictionView) {
	p := v.State.Data.Prediction
	fmt.Fprintf(w, "%s, %s\n", p.City, p.DisplayDate)
	if value, ok := p.PrimaryValue(); ok {
		fmt.Fprintf(w, "  Predicted %s  %.0f  (%s)\n", strings.ToUpper(p.PrimaryMetric), value, p.Category)
	}
	fmt.Fprintf(w, "  95%% CI       %.0f – %.0f\n", p.ConfidenceInterval.Lower, p.ConfidenceInterval.Upper)
	fmt.Fprintf(w, "  Likely range %.0f – %.0f\n", p.LikelyRange.Lower, p.LikelyRange.Upper)
	if v.FirstYear != 0 {
		fmt.Fprintf(w, "  Based on     %d–%d\n", v.FirstYear, v.LastYear)
	}
	if len(v.Rows) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s %-12s %8s %8s  %s\n", "Year", "Date", "AQI", "z", "")
	for _, row := range v.Rows {
		aqi := "-"
		if row.DayAQI != nil {
			aqi = fmt.Sprintf("%.0f", *row.DayAQI)
		}
		fmt.Fprintf(w, "%-6d %-12s %8s %8.2f  %s (%s)\n",
			row.Year, row.ExactDate, aqi, row.ZScore, row.Interpretation, row.Deviation.Label)
	}
}

func runCities(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	cities, err := a.views.Cities(cmd.Context())
	if err != nil {
		return errors.New(domain.UserMessage(err))
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string][]string{"cities": cities})
	}
	for _, c := range cities {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}
