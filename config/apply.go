/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/suparena/quickcontext"
	"github.com/suparena/quickcontext/datastore"
	"github.com/suparena/quickcontext/datastore/ddb"
	"github.com/suparena/quickcontext/storagemodels"
)

// StoreFactory builds the datastore backing a configured entry.
type StoreFactory func(ctx context.Context, entry EntryConfig) (datastore.DataStore[storagemodels.Record], error)

// DynamoDBFactory returns a StoreFactory whose stores share one DynamoDB client.
func DynamoDBFactory(ctx context.Context, aws AWSConfig, logger *slog.Logger) (StoreFactory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
		Region:    aws.Region,
		AccessKey: aws.AccessKey,
		SecretKey: aws.SecretKey,
		Endpoint:  aws.Endpoint,
	}, logger)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, entry EntryConfig) (datastore.DataStore[storagemodels.Record], error) {
		opts := []ddb.Option{ddb.WithLogger(logger)}
		if len(entry.IndexMap) > 0 {
			opts = append(opts, ddb.WithIndexMap(entry.IndexMap))
		}
		if entry.EntityType != "" {
			opts = append(opts, ddb.WithEntityType(entry.EntityType))
		}
		if len(entry.GSIs) > 0 {
			gsis := make([]ddb.GSIConfig, 0, len(entry.GSIs))
			for _, g := range entry.GSIs {
				gsis = append(gsis, ddb.GSIConfig{IndexName: g.IndexName, PartitionKeyName: g.PartitionKey})
			}
			opts = append(opts, ddb.WithGSI(gsis...))
		}
		return ddb.NewWithClient[storagemodels.Record](client, entry.Table, opts...), nil
	}, nil
}

// Apply registers cfg's values, in name order, and then its entries in file order.
func Apply(ctx context.Context, cfg *Config, reg *quickcontext.Registry, factory StoreFactory) error {
	names := make([]string, 0, len(cfg.Values))
	for name := range cfg.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := reg.Register(name, cfg.Values[name]); err != nil {
			return err
		}
	}

	for _, e := range cfg.Entries {
		store, err := factory(ctx, e)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.Name, err)
		}
		if _, err := quickcontext.RegisterModel[storagemodels.Record](reg, e.Name, store, e.LookupField); err != nil {
			return err
		}
	}
	return nil
}
