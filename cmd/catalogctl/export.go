package main

import (
	"fmt"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/infrastructure/objectstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "exports a catalog snapshot",
	Long:  "exports every schema and its tables as a JSON snapshot to an S3 bucket, then removes snapshots past retention",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket := viper.GetString("bucket")
		if bucket == "" {
			return fmt.Errorf("no bucket arg set")
		}
		prefix := viper.GetString("prefix")
		if prefix == "" {
			return fmt.Errorf("no prefix arg set")
		}

		cache, err := newCatalogCache()
		if err != nil {
			return err
		}
		store, err := objectstore.NewSnapshotStore(objectstore.Options{
			Endpoint:  viper.GetString("endpoint"),
			AccessKey: viper.GetString("access-key"),
			SecretKey: viper.GetString("secret-key"),
			Secure:    viper.GetBool("secure"),
		})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		snap, err := catalog.TakeSnapshot(ctx, cache)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			return err
		}
		key, err := store.PutSnapshot(ctx, bucket, prefix, snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", bucket, key)

		removed, err := store.Cleanup(ctx, bucket, prefix, viper.GetDuration("retention"), time.Now())
		if err != nil {
			return err
		}
		for _, key := range removed {
			fmt.Fprintf(cmd.OutOrStdout(), "del: %s\n", key)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("bucket", "b", "", "Destination bucket")
	exportCmd.Flags().StringP("prefix", "r", "", "Prefix for snapshot keys")
	exportCmd.Flags().StringP("endpoint", "e", "127.0.0.1:9000", "S3 endpoint")
	exportCmd.Flags().String("access-key", "", "S3 access key")
	exportCmd.Flags().String("secret-key", "", "S3 secret key")
	exportCmd.Flags().Bool("secure", false, "Use TLS for the S3 endpoint")
	exportCmd.Flags().Duration("retention", 7*24*time.Hour, "Keep snapshots younger than this")
	for _, name := range []string{"bucket", "prefix", "endpoint", "access-key", "secret-key", "secure", "retention"} {
		viper.BindPFlag(name, exportCmd.Flags().Lookup(name))
	}
	rootCmd.AddCommand(exportCmd)
}
