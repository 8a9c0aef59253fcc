package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/videos"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio backend: project records and demo videos",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load environment variables from .env file
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				fmt.Printf("Warning: Error loading .env file: %v\n", err)
			}

			zerolog.TimeFieldFormat = time.RFC3339
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	rootCmd.AddCommand(newOrphansCmd())

	return rootCmd
}

// stores builds the record store and the video store from settings
func stores(ctx context.Context, settings *config.Settings) (database.Database, *videos.Store, error) {
	videoOpts := []videos.Option{}
	if settings.S3Bucket != "" {
		mirror, err := videos.NewS3Mirror(ctx, settings.S3Bucket, settings.S3Prefix)
		if err != nil {
			return database.Database{}, nil, err
		}
		log.Info().Str("bucket", settings.S3Bucket).Str("prefix", settings.S3Prefix).Msg("Mirroring videos to S3")
		videoOpts = append(videoOpts, videos.WithMirror(mirror))
	}

	videoStore, err := videos.NewStore(settings.UploadDir, settings.MaxVideoBytes, videoOpts...)
	if err != nil {
		return database.Database{}, nil, err
	}

	db := database.New(settings.ProjectsFile, videoStore)
	if err := db.Init(); err != nil {
		return database.Database{}, nil, err
	}
	return db, videoStore, nil
}

func runServe(parent context.Context) error {
	fmt.Println("Initializing app...")

	settings, err := config.Load(config.New())
	if err != nil {
		return err
	}

	db, videoStore, err := stores(parent, settings)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	log.Info().Str("uploadDir", settings.UploadDir).Msg("Uploads directory ready")
	log.Info().Str("projectsFile", settings.ProjectsFile).Msg("Projects file ready")

	var notifier *services.Notifier
	if settings.NotificationsEnabled() {
		notifier = services.NewNotifier(settings.ResendAPIKey, settings.ResendFromEmail, settings.NotifyEmails)
	}

	server, err := api.NewServer(settings, db, videoStore, notifier)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	// Listen for interrupt signals to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		fmt.Printf("Closing server: %v\n", context.Cause(ctx))
		server.ShutdownGracefully(30 * time.Second)
		return nil
	})

	err = g.Wait()
	videoStore.Wait()
	return err
}

func newOrphansCmd() *cobra.Command {
	var (
		remove    bool
		olderThan time.Duration
	)

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List uploaded videos that no project references",
		Long: "List uploaded videos that no project references. Videos modified within --older-than\n" +
			"are skipped, since an upload is stored before the project that uses it is saved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(config.New())
			if err != nil {
				return err
			}

			db, videoStore, err := stores(cmd.Context(), settings)
			if err != nil {
				return err
			}

			var names []string
			if remove {
				names, err = services.RemoveOrphanVideos(cmd.Context(), db.ProjectRepo(), videoStore, olderThan)
			} else {
				names, err = services.FindOrphanVideos(cmd.Context(), db.ProjectRepo(), videoStore, olderThan)
			}
			// let mirrored deletes finish before the process exits
			videoStore.Wait()
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "remove the orphaned videos")
	cmd.Flags().DurationVar(&olderThan, "older-than", services.DefaultOrphanAge, "only consider videos last modified longer ago than this")

	return cmd
}
