/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/quickcontext/errors"
	"github.com/suparena/quickcontext/registry"
	"github.com/suparena/quickcontext/storagemodels"
)

// EntityTypeAttribute is written by Put when an entity type is configured, and
// restricts scans to that type in a shared table.
const EntityTypeAttribute = "EntityType"

// Client is the subset of the DynamoDB API the datastore uses.
type Client interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	sdk.QueryAPIClient
	sdk.ScanAPIClient
}

// ClientConfig holds the settings for building a DynamoDB client.
type ClientConfig struct {
	Region string
	// AccessKey and SecretKey select static credentials; when empty the default
	// AWS credential chain is used.
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. http://localhost:8000 for DynamoDB Local.
	Endpoint string
}

// DynamodbDataStore implements datastore.DataStore[T] by using AWS DynamoDB as the underlying data store.
type DynamodbDataStore[T any] struct {
	client     Client
	tableName  string
	indexMap   map[string]string
	gsis       []GSIConfig
	entityType string
	pageSize   int32
	logger     *slog.Logger
}

type options struct {
	indexMap   map[string]string
	gsis       []GSIConfig
	entityType string
	pageSize   int32
	logger     *slog.Logger
}

// Option configures a DynamodbDataStore.
type Option func(*options)

// WithIndexMap sets the key templates for the store. Without it the index map
// registered for T in the registry package is used.
func WithIndexMap(indexMap map[string]string) Option {
	return func(o *options) {
		o.indexMap = indexMap
	}
}

// WithGSI replaces the secondary indexes considered for single-record lookups.
func WithGSI(gsis ...GSIConfig) Option {
	return func(o *options) {
		o.gsis = gsis
	}
}

// WithEntityType tags written items and restricts scans to items carrying the tag.
func WithEntityType(entityType string) Option {
	return func(o *options) {
		o.entityType = entityType
	}
}

// WithPageSize sets the Limit of each Scan and Query page. Zero leaves it to DynamoDB.
func WithPageSize(size int32) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))

	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			key := strings.Trim(macro, "{}")

			val, ok := av[key]
			if !ok {
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// NULL, binary and set values do not take part in keys
				return ""
			}
		})
		res[fieldName] = expanded
	}

	return res, nil
}

// macroFields returns the field names referenced by the macros in template.
func macroFields(template string) []string {
	matches := macroPattern.FindAllStringSubmatch(template, -1)
	fields := make([]string, 0, len(matches))
	for _, m := range matches {
		fields = append(fields, m[1])
	}
	return fields
}

// keyedBy reports whether template has at least one macro and every macro names field.
func keyedBy(template, field string) bool {
	fields := macroFields(template)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if f != field {
			return false
		}
	}
	return true
}

// NewDynamoDBClient initializes a DynamoDB client.
func NewDynamoDBClient(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (*sdk.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Debug("DynamoDB client initialized",
		slog.String("region", cfg.Region),
		slog.String("endpoint", cfg.Endpoint))
	return client, nil
}

// NewDynamodbDataStore constructs a new DynamodbDataStore for type T backed by a fresh client.
func NewDynamodbDataStore[T any](ctx context.Context, cfg ClientConfig, tableName string, opts ...Option) (*DynamodbDataStore[T], error) {
	o := collectOptions(opts)
	client, err := NewDynamoDBClient(ctx, cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewWithClient[T](client, tableName, opts...), nil
}

// NewWithClient constructs a DynamodbDataStore over an existing client.
func NewWithClient[T any](client Client, tableName string, opts ...Option) *DynamodbDataStore[T] {
	o := collectOptions(opts)
	return &DynamodbDataStore[T]{
		client:     client,
		tableName:  tableName,
		indexMap:   o.indexMap,
		gsis:       o.gsis,
		entityType: o.entityType,
		pageSize:   o.pageSize,
		logger:     o.logger,
	}
}

func collectOptions(opts []Option) options {
	o := options{
		gsis:   []GSIConfig{DefaultGSIConfigs["GSI1"]},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// TableName returns the table the store reads and writes.
func (d *DynamodbDataStore[T]) TableName() string {
	return d.tableName
}

func (d *DynamodbDataStore[T]) getIndexMap() (map[string]string, bool) {
	if d.indexMap != nil {
		return d.indexMap, true
	}
	return registry.GetIndexMap[T]()
}

func (d *DynamodbDataStore[T]) typeName() string {
	if d.entityType != "" {
		return d.entityType
	}
	var zero T
	return fmt.Sprintf("%T", zero)
}

// GetBy retrieves the single item whose fieldPath equals value. When the path is
// the field the table key is built from, it issues a GetItem; when it is the
// field a configured GSI partition key is built from, it queries the index;
// otherwise it scans the table.
func (d *DynamodbDataStore[T]) GetBy(ctx context.Context, fieldPath, value string) (*T, error) {
	path, err := storagemodels.ParseFieldPath(fieldPath)
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	gsi := d.gsiFor(path)
	switch {
	case d.isKeyField(path):
		return d.getItem(ctx, path.Attributes[0], value)
	case gsi != nil:
		items, err = d.queryIndex(ctx, *gsi, value)
	default:
		items, err = d.scan(ctx, path, value)
	}
	if err != nil {
		return nil, err
	}

	switch len(items) {
	case 0:
		return nil, errors.NewNotFoundError(d.typeName(), fieldPath, value)
	case 1:
		return d.unmarshal(items[0])
	default:
		return nil, errors.NewMultipleResultsError(d.typeName(), fieldPath, value, len(items))
	}
}

// Filter returns all items matching the field-path expression. The comparison
// runs client side over a paginated scan, since expression values arrive as
// strings and the attribute types are only known per item.
func (d *DynamodbDataStore[T]) Filter(ctx context.Context, fieldPath, value string) ([]T, error) {
	path, err := storagemodels.ParseFieldPath(fieldPath)
	if err != nil {
		return nil, err
	}

	items, err := d.scan(ctx, path, value)
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(items))
	for _, item := range items {
		entity, err := d.unmarshal(item)
		if err != nil {
			return nil, err
		}
		results = append(results, *entity)
	}
	return results, nil
}

// Put stores the given 'entity' in the underlying data store using macros in the
// index map to populate partition/sort keys (and possibly GSIs).
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) error {
	indexMap, ok := d.getIndexMap()
	if !ok {
		return fmt.Errorf("%s: %w", d.typeName(), errors.ErrNoIndexMap)
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, err := expandMacros(indexMap, entity)
	if err != nil {
		return err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	if d.entityType != "" {
		av[EntityTypeAttribute] = &types.AttributeValueMemberS{Value: d.entityType}
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamodbDataStore[T]) isKeyField(path storagemodels.FieldPath) bool {
	if !path.IsPlainField() {
		return false
	}
	indexMap, ok := d.getIndexMap()
	if !ok {
		return false
	}
	field := path.Attributes[0]
	pk, okPK := indexMap["PK"]
	sk, okSK := indexMap["SK"]
	if !okPK || !okSK || !keyedBy(pk, field) {
		return false
	}
	// SK may be static or keyed by the same field
	fields := macroFields(sk)
	return len(fields) == 0 || keyedBy(sk, field)
}

func (d *DynamodbDataStore[T]) gsiFor(path storagemodels.FieldPath) *GSIConfig {
	if !path.IsPlainField() {
		return nil
	}
	indexMap, ok := d.getIndexMap()
	if !ok {
		return nil
	}
	for i := range d.gsis {
		template, ok := indexMap[d.gsis[i].PartitionKeyName]
		if ok && keyedBy(template, path.Attributes[0]) {
			return &d.gsis[i]
		}
	}
	return nil
}

func (d *DynamodbDataStore[T]) getItem(ctx context.Context, field, value string) (*T, error) {
	indexMap, _ := d.getIndexMap()

	keyMap, err := buildKeyFromExpanded(expandStringKey(indexMap, value))
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	d.logger.Debug("DynamoDB GetItem", slog.String("table", d.tableName), slog.String("field", field))
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError(d.typeName(), field, value)
	}
	return d.unmarshal(out.Item)
}

func (d *DynamodbDataStore[T]) queryIndex(ctx context.Context, gsi GSIConfig, value string) ([]map[string]types.AttributeValue, error) {
	indexMap, _ := d.getIndexMap()
	pkValue := macroPattern.ReplaceAllLiteralString(indexMap[gsi.PartitionKeyName], value)

	input := &sdk.QueryInput{
		TableName:              &d.tableName,
		IndexName:              aws.String(gsi.IndexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": gsi.PartitionKeyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pkValue},
		},
	}
	if d.pageSize > 0 {
		input.Limit = aws.Int32(d.pageSize)
	}

	d.logger.Debug("DynamoDB Query", slog.String("table", d.tableName), slog.String("index", gsi.IndexName))
	var items []map[string]types.AttributeValue
	paginator := sdk.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		items = append(items, out.Items...)
	}
	return items, nil
}

// scan walks the whole table page by page and keeps the items matching path.
func (d *DynamodbDataStore[T]) scan(ctx context.Context, path storagemodels.FieldPath, value string) ([]map[string]types.AttributeValue, error) {
	input := &sdk.ScanInput{
		TableName: &d.tableName,
	}
	if d.pageSize > 0 {
		input.Limit = aws.Int32(d.pageSize)
	}
	if d.entityType != "" {
		input.FilterExpression = aws.String("#et = :et")
		input.ExpressionAttributeNames = map[string]string{"#et": EntityTypeAttribute}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":et": &types.AttributeValueMemberS{Value: d.entityType},
		}
	}

	d.logger.Debug("DynamoDB Scan", slog.String("table", d.tableName), slog.String("path", path.String()))
	var (
		matched []map[string]types.AttributeValue
		pages   int
		scanned int
	)
	paginator := sdk.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		pages++
		scanned += len(out.Items)
		for _, item := range out.Items {
			ok, err := path.Match(d.stripKeys(item), value)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = append(matched, item)
			}
		}
	}
	d.logger.Debug("DynamoDB Scan complete",
		slog.String("table", d.tableName),
		slog.Int("pages", pages),
		slog.Int("scanned", scanned),
		slog.Int("matched", len(matched)))
	return matched, nil
}

// stripKeys drops the generated key attributes so they do not leak into records.
func (d *DynamodbDataStore[T]) stripKeys(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	indexMap, _ := d.getIndexMap()
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		if _, generated := indexMap[k]; generated {
			continue
		}
		if k == EntityTypeAttribute {
			continue
		}
		out[k] = v
	}
	return out
}

func (d *DynamodbDataStore[T]) unmarshal(item map[string]types.AttributeValue) (*T, error) {
	result := new(T)
	if err := attributevalue.UnmarshalMap(d.stripKeys(item), result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
// It assumes that the expanded map has valid non-empty values for "PK" and "SK".
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, fmt.Errorf("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// expandStringKey replaces every macro in the index map templates with key.
func expandStringKey(indexMap map[string]string, key string) map[string]string {
	expanded := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		expanded[field] = macroPattern.ReplaceAllLiteralString(template, key)
	}
	return expanded
}
