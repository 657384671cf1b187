package dynamo

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	reasonConditionalCheckFailed = "ConditionalCheckFailed"
	reasonNone                   = "None"
)

// OrderRepository writes orders and reserves stock with TransactWriteItems.
type OrderRepository struct {
	ddb           API
	productsTable string
	ordersTable   string
	now           func() time.Time
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(ddb API, productsTable, ordersTable string) *OrderRepository {
	if productsTable == "" {
		productsTable = defaultProductsTable
	}
	if ordersTable == "" {
		ordersTable = defaultOrdersTable
	}
	return &OrderRepository{
		ddb:           ddb,
		productsTable: productsTable,
		ordersTable:   ordersTable,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder sends one transaction holding a conditional decrement per product
// followed by the order put. DynamoDB caps a transaction at 100 actions.
func (r *OrderRepository) PlaceOrder(ctx context.Context, order *domain.Order, reservations []domain.Reservation) error {
	sorted := append([]domain.Reservation(nil), reservations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	orderAV, err := attributevalue.MarshalMap(toOrderItem(order))
	if err != nil {
		return err
	}

	now := formatTime(r.now())
	actions := make([]types.TransactWriteItem, 0, len(sorted)+1)
	for _, res := range sorted {
		actions = append(actions, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(r.productsTable),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: res.ProductID},
				},
				UpdateExpression:    aws.String("SET quantity = quantity - :q, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(id) AND quantity >= :q"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":q":   &types.AttributeValueMemberN{Value: strconv.FormatInt(res.Quantity, 10)},
					":now": &types.AttributeValueMemberS{Value: now},
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		})
	}
	actions = append(actions, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(r.ordersTable),
			Item:                orderAV,
			ConditionExpression: aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{
				"#id": "id",
			},
		},
	})

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      actions,
		ClientRequestToken: aws.String(order.ID),
	})
	if err == nil {
		return nil
	}

	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) {
		if reserveErr := reservationFailure(sorted, cancelled.CancellationReasons); reserveErr != nil {
			return reserveErr
		}
	}
	slog.ErrorContext(ctx, "place order transaction failed", slog.String("order_id", order.ID), slog.Any("err", err))
	return classify(err)
}

// reservationFailure reports the product whose stock condition failed,
// preferring the earliest cart line when several did.
// Reasons are positional: index i matches the i-th action.
func reservationFailure(sorted []domain.Reservation, reasons []types.CancellationReason) error {
	failed := -1
	for i, reason := range reasons {
		if i >= len(sorted) {
			break
		}
		if aws.ToString(reason.Code) != reasonConditionalCheckFailed {
			continue
		}
		if failed < 0 || sorted[i].Line < sorted[failed].Line {
			failed = i
		}
	}
	if failed >= 0 {
		res := sorted[failed]
		item := reasons[failed].Item
		if len(item) == 0 {
			return domain.ProductNotFound(res.Name)
		}
		var it productItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return err
		}
		return domain.InsufficientStock(res.Name, it.Quantity, res.Quantity)
	}
	for _, reason := range reasons {
		code := aws.ToString(reason.Code)
		if code != "" && code != reasonNone {
			return domain.StorageUnavailable(errors.New("transaction cancelled: " + code))
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.ordersTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	o, err := unmarshalOrder(out.Item)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders uses the email index when an email is given and scans otherwise.
func (r *OrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var statusFilter *string
	if filter.Status != "" {
		names["#s"] = "status"
		values[":s"] = &types.AttributeValueMemberS{Value: string(filter.Status)}
		statusFilter = aws.String("#s = :s")
	}

	var (
		raws []map[string]types.AttributeValue
		err  error
	)
	if filter.Email != "" {
		names["#e"] = "email_key"
		values[":e"] = &types.AttributeValueMemberS{Value: toEmailKey(filter.Email)}
		raws, err = queryAll(ctx, r.ddb, &dynamodb.QueryInput{
			TableName:                 aws.String(r.ordersTable),
			IndexName:                 aws.String(ordersEmailIndex),
			KeyConditionExpression:    aws.String("#e = :e"),
			FilterExpression:          statusFilter,
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
	} else {
		in := &dynamodb.ScanInput{TableName: aws.String(r.ordersTable), FilterExpression: statusFilter}
		if statusFilter != nil {
			in.ExpressionAttributeNames = names
			in.ExpressionAttributeValues = values
		}
		raws, err = scanAll(ctx, r.ddb, in)
	}
	if err != nil {
		slog.ErrorContext(ctx, "list orders failed", slog.Any("err", err))
		return nil, 0, classify(err)
	}

	matched := make([]domain.Order, 0, len(raws))
	for _, raw := range raws {
		o, err := unmarshalOrder(raw)
		if err != nil {
			return nil, 0, err
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, filter.Offset(), filter.PageSize), int64(len(matched)), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.ordersTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #s = :to, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND #s = :from"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":   &types.AttributeValueMemberS{Value: string(to)},
			":from": &types.AttributeValueMemberS{Value: string(from)},
			":now":  &types.AttributeValueMemberS{Value: formatTime(r.now())},
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var failed *types.ConditionalCheckFailedException
		if errors.As(err, &failed) {
			if len(failed.Item) == 0 {
				return nil, nil
			}
			var current orderItem
			if err := attributevalue.UnmarshalMap(failed.Item, &current); err != nil {
				return nil, err
			}
			return nil, domain.InvalidTransition(domain.OrderStatus(current.Status), to)
		}
		slog.ErrorContext(ctx, "update order status failed", slog.String("order_id", id), slog.Any("err", err))
		return nil, classify(err)
	}

	o, err := unmarshalOrder(out.Attributes)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func unmarshalOrder(raw map[string]types.AttributeValue) (domain.Order, error) {
	var it orderItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return domain.Order{}, err
	}
	return fromOrderItem(it)
}
