package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-blog-nosql/internal/domain"
)

// BlogRepo provides typed DynamoDB operations for the blogs table.
type BlogRepo struct {
	client    API
	tableName string
}

func NewBlogRepo(client API, tableName string) *BlogRepo {
	return &BlogRepo{client: client, tableName: tableName}
}

func (r *BlogRepo) Put(ctx context.Context, b *domain.Blog) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal blog: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(blog_id)"),
	})
	return err
}

func (r *BlogRepo) Get(ctx context.Context, blogID string) (*domain.Blog, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldBlogID, blogID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("blog %s: %w", blogID, domain.ErrNotFound)
	}
	var b domain.Blog
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByProfile returns every blog owned by profileID, newest update first.
func (r *BlogRepo) ListByProfile(ctx context.Context, profileID string) ([]domain.Blog, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexBlogsByProfile),
		KeyConditionExpression: aws.String("profile_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": strVal(profileID),
		},
		ScanIndexForward: aws.Bool(false),
	})
	blogs := []domain.Blog{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Blog
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		blogs = append(blogs, batch...)
	}
	return blogs, nil
}

// ListPublished returns one page of published blogs, newest update first.
// cursor is the opaque token from the previous page; "" starts at the top.
// The returned cursor is "" when there are no more pages.
func (r *BlogRepo) ListPublished(ctx context.Context, limit int32, cursor string) ([]domain.Blog, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexBlogsByPublished),
		KeyConditionExpression: aws.String("published = :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if cursor != "" {
		start, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = start
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	blogs := []domain.Blog{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &blogs); err != nil {
		return nil, "", err
	}
	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return blogs, next, nil
}

// UpdateOwned applies updates only when the blog belongs to profileID.
// A missing blog and a foreign blog both return domain.ErrNotFound.
func (r *BlogRepo) UpdateOwned(ctx context.Context, profileID, blogID string, updates map[string]interface{}) (*domain.Blog, error) {
	updates[fieldUpdatedAt] = stamp()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	ue.Names["#owner"] = fieldProfileID
	ue.Values[":owner"] = strVal(profileID)
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldBlogID, blogID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#owner = :owner"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, ownedWriteError(blogID, err)
	}
	var b domain.Blog
	if err := attributevalue.UnmarshalMap(out.Attributes, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BlogRepo) DeleteOwned(ctx context.Context, profileID, blogID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldBlogID, blogID),
		ConditionExpression:       aws.String("profile_id = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":owner": strVal(profileID)},
	})
	if err != nil {
		return ownedWriteError(blogID, err)
	}
	return nil
}

func ownedWriteError(blogID string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("blog %s: %w", blogID, domain.ErrNotFound)
	}
	return err
}
