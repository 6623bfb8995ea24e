package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	sweepy "github.com/alandotcom/sweepy"
	"github.com/alandotcom/sweepy/arcgis"
	"github.com/alandotcom/sweepy/config"
	"github.com/alandotcom/sweepy/dataset"
	"github.com/alandotcom/sweepy/route"
)

var rootCmd = &cobra.Command{
	Use:          "sweepy",
	Short:        "LA street sweeping lookup",
	Long:         "Looks up City of LA street sweeping schedules by address or location",
	SilenceUsage: true,
}

var configPath string

func init() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(serveCmd, lookupCmd, holidaysCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func buildService() (*sweepy.Service, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	holidays, err := cfg.HolidayCalendar()
	if err != nil {
		return nil, nil, err
	}

	var source route.Source
	if cfg.Snapshot != "" {
		snapshot, err := dataset.LoadFile(cfg.Snapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("loading snapshot: %w", err)
		}
		log.Printf("serving %d routes from %s", snapshot.Len(), cfg.Snapshot)
		source = snapshot
	} else {
		server := arcgis.NewRouteServer()
		if cfg.ArcGIS.RoutesURL != "" {
			server.URL = cfg.ArcGIS.RoutesURL
		}
		source = server
	}

	geocoder := arcgis.NewGeocoder(cfg.ArcGIS.APIKey)
	if cfg.ArcGIS.GeocodeURL != "" {
		geocoder.URL = cfg.ArcGIS.GeocodeURL
	}

	service, err := sweepy.NewService(geocoder, source, holidays)
	if err != nil {
		return nil, nil, err
	}

	return service, cfg, nil
}
