package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tablesift/adapters/excel"
	"tablesift/app"
	"tablesift/internal"
	"tablesift/internal/config"
	"tablesift/internal/extract"
	"tablesift/internal/profile"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tablesift",
		Short:         "Recover clean tables from multi-table CSV and XLSX sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newExtractCmd(),
		newExportCmd(),
		newProfileCmd(),
		newLoadCmd(),
		newUploadsCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env bundles what every command needs: config, logger and an extract-only service
type env struct {
	cfg    *config.Config
	logger *internal.Logger
	opts   app.UploadOptions
}

func loadEnv(namePolicy string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if namePolicy == "" {
		namePolicy = cfg.Extract.NamePolicy
	}
	policy, err := extract.ParseNamePolicy(namePolicy)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		opts: app.UploadOptions{
			NamePolicy: policy,
			Workers:    cfg.Extract.Workers,
			MaxRows:    cfg.Extract.MaxRows,
		},
	}, nil
}

func (e *env) loader() *excel.Loader {
	return excel.NewLoader(loaderConfig(e.cfg), e.logger)
}

func loaderConfig(cfg *config.Config) excel.LoaderConfig {
	lc := excel.DefaultLoaderConfig()
	lc.RawValues = cfg.Loader.RawValues
	lc.FillMergedCells = cfg.Loader.FillMerged
	return lc
}

func extractFile(ctx context.Context, e *env, path string) (*app.ExtractResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	svc := app.NewUploadService(e.loader(), nil, nil, e.opts, e.logger)
	return svc.Extract(ctx, filepath.Base(path), f)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func newExtractCmd() *cobra.Command {
	var pretty bool
	var namePolicy string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract every table of a file and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(namePolicy)
			if err != nil {
				return err
			}
			res, err := extractFile(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res, pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	cmd.Flags().StringVar(&namePolicy, "name-policy", "", "Table name collisions: last-wins or suffix (default from NAME_POLICY)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var outDir string
	var namePolicy string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write every extracted table to its own CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(namePolicy)
			if err != nil {
				return err
			}
			res, err := extractFile(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}
			paths, err := excel.ExportDir(outDir, res.Tables)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&namePolicy, "name-policy", "suffix", "Table name collisions: last-wins or suffix")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Print a column profile of every extracted table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			res, err := extractFile(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}
			profiles := make([]profile.Profile, len(res.Tables))
			for i, t := range res.Tables {
				profiles[i] = profile.Table(t)
			}
			return writeJSON(cmd.OutOrStdout(), profiles, pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	return cmd
}

func newLoadCmd() *cobra.Command {
	var namePolicy string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Replace the stored tables with the tables of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(namePolicy)
			if err != nil {
				return err
			}
			svc, closeDB, err := e.storageService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rec, err := svc.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "upload %s: %d tables, %d rows\n", rec.ID, len(rec.TablesCreated), rec.RowCount)
			for _, name := range rec.TablesCreated.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s.%s\n", e.cfg.Database.Schema, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&namePolicy, "name-policy", "", "Table name collisions: last-wins or suffix (default from NAME_POLICY)")
	return cmd
}

func newUploadsCmd() *cobra.Command {
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "List recorded uploads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			svc, closeDB, err := e.storageService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			list, err := svc.ListUploads(cmd.Context(), limit, !all)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tTYPE\tTABLES\tROWS\tUPLOADED\tACTIVE")
			for _, u := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%t\n",
					u.ID, u.Filename, u.FileType, len(u.TablesCreated), u.RowCount,
					u.UploadedAt.Format("2006-01-02 15:04:05"), u.IsActive)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of uploads to list")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive uploads")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			db, err := e.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			return runMigrations(cmd.Context(), cmd.OutOrStdout(), db, status)
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Only show migration status")
	return cmd
}
