package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/kafka"
)

func newPublishCmd(g *globals) *cobra.Command {
	var (
		file      string
		deleteIDs []uint
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish product upserts from a JSON file, or deletes by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (len(deleteIDs) == 0) {
				return errors.New("exactly one of --file or --delete is required")
			}
			if len(g.cfg.Kafka.Brokers) == 0 {
				return errors.New("kafka.brokers is empty (set MS_KAFKA_BROKERS)")
			}
			producer := kafka.NewProducer(g.cfg.Kafka, g.cfg.Kafka.Topics.ProductEvents)
			defer producer.Close()
			pub := publisher.New(producer)

			if file != "" {
				var products []catalog.Product
				err := catalog.JSONFileSource{Path: file}.Scan(cmd.Context(), func(p catalog.Product) error {
					products = append(products, p)
					return nil
				})
				if err != nil {
					return err
				}
				if err := pub.Upsert(cmd.Context(), products); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published %d upserts\n", len(products))
				return nil
			}

			ids := make([]uint32, 0, len(deleteIDs))
			for _, id := range deleteIDs {
				if id > uint(^uint32(0)) {
					return fmt.Errorf("product id %d out of range", id)
				}
				ids = append(ids, uint32(id))
			}
			if err := pub.Delete(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d deletes\n", len(ids))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of products to upsert")
	cmd.Flags().UintSliceVar(&deleteIDs, "delete", nil, "product ids to delete (comma separated or repeated)")
	return cmd
}
