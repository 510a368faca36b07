package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/document"
	"github.com/spigell/resume-matcher/internal/export"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	PromptShowMatches         = "Show matches"
	PromptReportByLocation    = "Report by location"
	PromptMatchesToFile       = "Dump matches to file"
	PromptExportToExcel       = "Export matches to Excel"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
	PromptExit                = "Exit"

	defaultExportFile = app + "-report.xlsx"
	excludeReason     = "dismissed from match report"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptShowMatches,
		PromptReportByLocation,
		PromptMatchesToFile,
		PromptExportToExcel,
		PromptAppendToExcludeFile,
		PromptExit,
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a resume against job listings for a role",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("resume", "r", "", "path to the resume (.pdf, .docx or .txt)")
	matchCmd.Flags().String("role", "", "job role to search for")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the matches and exit without prompting")
	matchCmd.Flags().String("export", "", "write the report to this Excel file")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with listings to exclude. Default is unset.")

	matchCmd.MarkFlagRequired("resume")
	matchCmd.MarkFlagRequired("role")

	viper.BindPFlag("match.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatal(err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the resume-matcher")

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumePath, _ := cmd.Flags().GetString("resume")
	role, _ := cmd.Flags().GetString("role")
	role = strings.TrimSpace(role)

	text, err := document.ExtractFile(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.String("file", resumePath), zap.Error(err))
	}

	logger.Info("resume loaded", zap.String("file", resumePath), zap.Int("chars", len([]rune(text))))

	source, err := newJobSource(config.Adzuna, logger)
	if err != nil {
		logger.Fatal("configuring the job source", zap.Error(err))
	}

	logger.Info("starting the search", zap.String("role", role))

	listings := source.Fetch(ctx, role)
	if listings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "No jobs found for this role."))
		return
	}

	engine, err := newEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring the matcher", zap.Error(err))
	}

	report, err := engine.Match(ctx, text, role, listings)
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	logger.Info(report.Message(), zap.String("outcome", string(report.Outcome)), zap.Int("considered", report.Considered))

	if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
		if err := exportReport(report, exportPath, logger); err != nil {
			logger.Fatal("exporting report", zap.Error(err))
		}
	}

	if len(report.Matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no matches left after filters"))
		return
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		if err := handleAction(PromptShowMatches, logger, config, report); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, report); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, report *matching.Report) error {
	switch action {
	case PromptShowMatches:
		for i, m := range report.Matches {
			logger.Info(fmt.Sprintf("#%d %s", i+1, m.Title),
				zap.String("company", m.Company),
				zap.String("location", m.Location),
				zap.Float64("similarity_percent", m.Similarity),
				zap.String("apply_url", m.ApplyURL),
			)
		}
		return nil
	case PromptReportByLocation:
		pretty, _ := json.MarshalIndent(report.Listings().ReportByLocation(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", len(report.Matches)))
		return nil
	case PromptMatchesToFile:
		filename, err := report.Listings().DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExportToExcel:
		return exportReport(report, defaultExportFile, logger)
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(config.Match.ExcludeFile, report, logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func exportReport(report *matching.Report, path string, logger *zap.Logger) error {
	saved, err := export.ToExcel(report, path)
	if err != nil {
		return err
	}
	logger.Info("report exported", zap.String("filename", saved))
	return nil
}

func appendToExcludeFile(excludeFile string, report *matching.Report, logger *zap.Logger) error {
	if excludeFile == "" {
		logger.Warn("exclude file is not configured",
			zap.String("hint", "set match.exclude-file or pass --exclude-file"),
		)
		return nil
	}

	excluded, err := jobs.LoadExcluded(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(report.Listings().ToExcluded(excludeReason))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(report.Matches)))
	return nil
}
