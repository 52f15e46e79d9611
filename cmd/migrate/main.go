package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/config"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/logging"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/repository"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the portfolio database schema.",
	Long:  `migrate applies the embedded schema migrations and seeds sample projects.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(".env", "../.env")
		if err != nil {
			return err
		}
		cfg = c
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(upCmd(), downCmd(), versionCmd(), seedCmd())
	if err := rootCmd.Execute(); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func withMigrator(fn func(*repository.Migrator) error) error {
	mg, err := repository.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *repository.Migrator) error {
				if err := mg.Up(); err != nil {
					return err
				}
				v, _, err := mg.Version()
				if err != nil {
					return err
				}
				slog.Info("migrations applied", "version", v)
				return nil
			})
		},
	}
}

func downCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *repository.Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				slog.Info("migrations rolled back", "steps", steps)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 = all)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *repository.Migrator) error {
				v, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				slog.Info("schema version", "version", v, "dirty", dirty)
				return nil
			})
		},
	}
}

// seedCmd はサンプルプロジェクトで projects テーブルを置き換える
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace stored projects with the sample set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			projects := sampleProjects()
			if err := repository.NewPgProjectRepository(pool).ReplaceAll(ctx, projects); err != nil {
				return err
			}
			slog.Info("sample projects seeded", "count", len(projects))
			return nil
		},
	}
}

func sampleProjects() []*model.Project {
	link := func(s string) *string { return &s }
	return []*model.Project{
		{
			Title:        "E-Commerce Website",
			Description:  "A full-stack e-commerce platform with user authentication, product catalog, shopping cart, and payment integration.",
			Technologies: []string{"React", "Node.js", "PostgreSQL", "Go", "Stripe"},
			Image:        "https://via.placeholder.com/400x250",
			GitHubLink:   "https://github.com/yourusername/ecommerce",
			LiveLink:     link("https://your-ecommerce-site.com"),
			Category:     model.CategoryFullstack,
			Featured:     true,
		},
		{
			Title:        "Social Media Dashboard",
			Description:  "A responsive dashboard for managing social media accounts with analytics, post scheduling, and engagement tracking.",
			Technologies: []string{"React", "Redux", "Go", "PostgreSQL", "Chart.js"},
			Image:        "https://via.placeholder.com/400x250",
			GitHubLink:   "https://github.com/yourusername/social-dashboard",
			LiveLink:     link("https://your-dashboard.com"),
			Category:     model.CategoryWeb,
		},
		{
			Title:        "Task Management App",
			Description:  "A collaborative task management application with real-time updates, team collaboration, and project tracking features.",
			Technologies: []string{"React", "Go", "PostgreSQL", "WebSocket"},
			Image:        "https://via.placeholder.com/400x250",
			GitHubLink:   "https://github.com/yourusername/task-manager",
			LiveLink:     link("https://your-task-app.com"),
			Category:     model.CategoryFullstack,
		},
		{
			Title:        "Weather Forecast App",
			Description:  "Real-time weather forecast application with location-based weather data, 7-day forecast, and interactive maps.",
			Technologies: []string{"React", "OpenWeather API", "CSS3", "Geolocation"},
			Image:        "https://via.placeholder.com/400x250",
			GitHubLink:   "https://github.com/yourusername/weather-app",
			LiveLink:     link("https://your-weather-app.com"),
			Category:     model.CategoryMobile,
		},
	}
}
