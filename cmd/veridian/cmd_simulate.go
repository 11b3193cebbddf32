package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/view"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the mitigation what-if simulator",
	Long: `Simulate placing air-purification units. Each unit lowers the AQI by 5
until the safe level of 50 is reached.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("aqi", "", "initial AQI (defaults to 180 when missing or invalid)")
	simulateCmd.Flags().Int("units", 0, "units to place at the anchor before auto-deploy")
	simulateCmd.Flags().Bool("auto-deploy", false, "place every remaining unit around the anchor")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetString("aqi")
	units, _ := cmd.Flags().GetInt("units")
	auto, _ := cmd.Flags().GetBool("auto-deploy")

	ctx := cmd.Context()
	sess := a.store.Create()
	v := a.views.ResetSimulation(ctx, sess, raw)
	anchor := domain.Position{Lat: a.cfg.AnchorLat, Lng: a.cfg.AnchorLng}
	for range max(units, 0) {
		v = a.views.PlaceUnit(ctx, sess, anchor)
	}
	if auto {
		v = a.views.AutoDeploy(ctx, sess)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	renderSimulation(cmd.OutOrStdout(), v)
	return nil
}

func renderSimulation(w io.Writer, v view.SimulationView) {
	fmt.Fprintf(w, "Initial AQI     %.0f\n", v.InitialAQI)
	fmt.Fprintf(w, "Projected AQI   %.0f  %s\n", v.CurrentAQI, v.Category.Label)
	fmt.Fprintf(w, "Units deployed  %d (required %d, remaining %d)\n", v.UnitCount, v.Required, v.Remaining)
	fmt.Fprintf(w, "Impact          -%.0f AQI\n", v.Impact)
	fmt.Fprintf(w, "CO2 removed     %d kg/day\n", v.CO2RemovedKg)
	fmt.Fprintf(w, "Equivalent to   %d trees\n", v.TreeEquivalent)

	filled := int(v.Progress / 5)
	filled = min(max(filled, 0), 20)
	fmt.Fprintf(w, "Level           [%s%s] %.0f%%\n", strings.Repeat("#", filled), strings.Repeat(".", 20-filled), v.Progress)

	if v.TargetAchieved {
		fmt.Fprintln(w, "Target achieved: air quality is at a safe level.")
	}
}
