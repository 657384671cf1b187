package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const maxBatchGetAttempts = 3

// CatalogRepository reads products from the products table.
type CatalogRepository struct {
	ddb       API
	tableName string
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(ddb API, tableName string) *CatalogRepository {
	if tableName == "" {
		tableName = defaultProductsTable
	}
	return &CatalogRepository{ddb: ddb, tableName: tableName}
}

func (r *CatalogRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	seen := make(map[string]struct{}, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		})
	}

	request := map[string]types.KeysAndAttributes{
		r.tableName: {Keys: keys, ConsistentRead: aws.Bool(true)},
	}
	found := make(map[string]domain.Product, len(keys))
	for attempt := 0; len(request) > 0; attempt++ {
		if attempt == maxBatchGetAttempts {
			return nil, domain.StorageUnavailable(fmt.Errorf("batch get: unprocessed keys after %d attempts", attempt))
		}
		res, err := r.ddb.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			slog.ErrorContext(ctx, "batch get products failed", slog.Any("err", err))
			return nil, classify(err)
		}
		for _, raw := range res.Responses[r.tableName] {
			p, err := unmarshalProduct(raw)
			if err != nil {
				return nil, err
			}
			found[p.ID] = p
		}
		request = res.UnprocessedKeys
	}

	for _, id := range ids {
		if p, ok := found[id]; ok {
			out = append(out, p)
			delete(found, id)
		}
	}
	return out, nil
}

// FindByNames queries the name index once per distinct name.
func (r *CatalogRepository) FindByNames(ctx context.Context, names []string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		raws, err := queryAll(ctx, r.ddb, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(productsNameIndex),
			KeyConditionExpression: aws.String("#n = :n"),
			ExpressionAttributeNames: map[string]string{
				"#n": "name",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":n": &types.AttributeValueMemberS{Value: name},
			},
		})
		if err != nil {
			slog.ErrorContext(ctx, "query products by name failed", slog.String("name", name), slog.Any("err", err))
			return nil, classify(err)
		}
		for _, raw := range raws {
			p, err := unmarshalProduct(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListProducts scans the table and pages in memory; the catalog is small.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}

	var conds []string
	values := map[string]types.AttributeValue{}
	if filter.Category != "" {
		conds = append(conds, "category = :c")
		values[":c"] = &types.AttributeValueMemberS{Value: string(filter.Category)}
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		conds = append(conds, "contains(name_lower, :q)")
		values[":q"] = &types.AttributeValueMemberS{Value: search}
	}
	if len(conds) > 0 {
		in.FilterExpression = aws.String(strings.Join(conds, " AND "))
		in.ExpressionAttributeValues = values
	}

	raws, err := scanAll(ctx, r.ddb, in)
	if err != nil {
		slog.ErrorContext(ctx, "scan products failed", slog.Any("err", err))
		return nil, 0, classify(err)
	}
	matched := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		p, err := unmarshalProduct(raw)
		if err != nil {
			return nil, 0, err
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, filter.Offset(), filter.PageSize), int64(len(matched)), nil
}

func unmarshalProduct(raw map[string]types.AttributeValue) (domain.Product, error) {
	var it productItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return domain.Product{}, err
	}
	return fromProductItem(it)
}
