package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "github.com/emberridge/inkwell/pkg/internal"
	"github.com/emberridge/inkwell/pkg/internal/cache"
	"github.com/emberridge/inkwell/pkg/internal/database"
	"github.com/emberridge/inkwell/pkg/internal/http"
	"github.com/emberridge/inkwell/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ___       _                   _ _\n|_ _|_ __ | | ____      _____| | |\n | || '_ \\| |/ /\\ \\ /\\ / / _ \\ | |\n | || | | |   <  \\ V  V /  __/ | |\n|___|_| |_|_|\\_\\  \\_/\\_/ \\___|_|_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Inkwell"), pkg.AppVersion)
	fmt.Printf("The content service for writers and their tags\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// In-memory cache for public account projections
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when setting up the cache store.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoReferenceCountAudit)
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
