package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alandotcom/sweepy/holiday"
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays <year>",
	Short: "Prints the city holiday dates observed in a year",
	Long: "Prints the street sweeping holidays observed in a year, one ISO date " +
		"per line, suitable for the holidays section of the config file",
	Args: cobra.ExactArgs(1),
	RunE: holidays,
}

func holidays(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year '%s'", args[0])
	}

	for _, date := range holiday.Generate(year).Dates() {
		fmt.Println(date.Format("2006-01-02"))
	}
	return nil
}
