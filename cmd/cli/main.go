package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"cardwatch/pkg/csv"
	"cardwatch/pkg/models"
	"cardwatch/pkg/parser"
)

var (
	limitsFile string
	debug      bool
	csvOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "cardwatch",
	Short: "Card balance scraper toolbox",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file...>",
	Short: "Parse OCR text dumps into account records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		limits := parser.DefaultLimits()
		if limitsFile != "" {
			var err error
			limits, err = parser.LoadLimits(limitsFile)
			if err != nil {
				return err
			}
		}
		p := parser.New(logger, parser.WithLimits(limits))

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("failed to read file", "file", path, "error", err)
				continue
			}

			accounts, format := p.ParseWithFormat(string(data))
			logger.Info("parsed file", "file", path, "format", format, "accounts", len(accounts))

			switch {
			case debug:
				pp.Println(accounts)
			case csvOutput:
				fmt.Print(string(csv.Create(asRecords(accounts), nil)))
			default:
				printAccounts(accounts)
			}
		}
		return nil
	},
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "cardwatch",
		Level:           level,
	})
}

func printAccounts(accounts []models.Account) {
	for _, a := range accounts {
		last4 := "-"
		if a.Last4 != nil {
			last4 = *a.Last4
		}
		line := fmt.Sprintf("%-12s %-12s %s  $%.2f", a.Issuer, a.Product, last4, a.Balance)
		if a.Utilization != nil {
			line += fmt.Sprintf("  (%.2f%% of $%.0f)", *a.Utilization, *a.Limit)
		}
		if a.DueDate != nil {
			line += "  due " + *a.DueDate
		}
		fmt.Println(line)
	}
}

// accountRecord adapts an account to the csv.Record interface.
type accountRecord struct {
	a models.Account
}

func (r accountRecord) Issuer() string  { return r.a.Issuer }
func (r accountRecord) Product() string { return r.a.Product }
func (r accountRecord) Amount() float64 { return r.a.Balance }
func (r accountRecord) Last4() string {
	if r.a.Last4 == nil {
		return ""
	}
	return *r.a.Last4
}

func asRecords(accounts []models.Account) []accountRecord {
	records := make([]accountRecord, len(accounts))
	for i, a := range accounts {
		records[i] = accountRecord{a}
	}
	return records
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&limitsFile, "limits", "", "YAML file overriding the credit limit table")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose output with full record dumps")

	parseCmd.Flags().BoolVar(&csvOutput, "csv", false, "Print accounts as CSV")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
