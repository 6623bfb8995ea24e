package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	sweepy "github.com/alandotcom/sweepy"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [address]",
	Short: "Looks up the sweeping schedule for an address or point",
	RunE:  lookup,
}

var lookupAt string

func init() {
	lookupCmd.Flags().StringVar(&lookupAt, "at", "", "look up a point instead, on form <lat>,<lon>")
}

func lookup(cmd *cobra.Command, args []string) error {
	service, _, err := buildService()
	if err != nil {
		return err
	}

	var report *sweepy.Report
	if lookupAt != "" {
		lat, lon, err := parsePoint(lookupAt)
		if err != nil {
			return err
		}
		report, err = service.LookupPoint(cmd.Context(), lon, lat)
		if err != nil {
			return err
		}
	} else {
		if len(args) == 0 {
			return fmt.Errorf("an address or --at <lat>,<lon> is required")
		}
		report, err = service.LookupAddress(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
	}

	fmt.Println(report.Label)
	fmt.Println()
	fmt.Println(report.Text())
	return nil
}

func parsePoint(raw string) (float64, float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("'%s' is not on form <lat>,<lon>", raw)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude '%s'", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude '%s'", parts[1])
	}

	return lat, lon, nil
}
