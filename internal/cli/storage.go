package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/storage"
)

// storageCommand creates the snapshot storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage the stored diagram snapshot",
	}

	cmd.AddCommand(c.storagePathCommand())
	cmd.AddCommand(c.storageClearCommand())

	return cmd
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the snapshot is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			loc, err := storageLocation(cfg.Storage)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}

// storageLocation describes where the snapshot lives for cfg's driver.
func storageLocation(cfg storage.Config) (string, error) {
	driver, err := storage.ParseDriver(string(cfg.Driver))
	if err != nil {
		return "", err
	}

	switch driver {
	case storage.DriverFile:
		fs, err := storage.NewFileStore(cfg.File.Dir)
		if err != nil {
			return "", err
		}
		return fs.Path(editor.StorageKey), nil
	case storage.DriverSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			if path, err = storage.DefaultSQLitePath(); err != nil {
				return "", err
			}
		}
		return path + "#" + editor.StorageKey, nil
	case storage.DriverPostgres:
		return "postgres snapshots/" + editor.StorageKey, nil
	case storage.DriverRedis:
		return fmt.Sprintf("redis://%s/%d/%s%s", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix, editor.StorageKey), nil
	case storage.DriverMongo:
		return fmt.Sprintf("%s %s.%s/%s", cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, editor.StorageKey), nil
	case storage.DriverS3:
		return fmt.Sprintf("s3://%s/%s%s.json", cfg.S3.Bucket, cfg.S3.Prefix, editor.StorageKey), nil
	default:
		return "memory (not persisted)", nil
	}
}

// storageClearCommand creates the "storage clear" subcommand.
func (c *CLI) storageClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.Open(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, found, err := store.Get(ctx, editor.StorageKey); err == nil && !found {
				printInfo("Nothing stored")
				return nil
			}
			if err := store.Delete(ctx, editor.StorageKey); err != nil {
				return err
			}
			printSuccess("Cleared stored snapshot")
			printDetail("Driver: %s", store.Driver())
			return nil
		},
	}
}
