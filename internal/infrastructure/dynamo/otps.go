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

// OTPRepo manages the one-code-per-email OTP table.
// PK: email. A put replaces any previous code for the address.
type OTPRepo struct {
	client     API
	tableName  string
	usersTable string
}

func NewOTPRepo(client API, tableName, usersTable string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, usersTable: usersTable}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.OTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	var o domain.OTP
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ConsumeAndVerify marks the user verified and deletes the OTP in a single
// transaction. The user must still be unverified and the stored code must
// still equal code; otherwise nothing is written.
func (r *OTPRepo) ConsumeAndVerify(ctx context.Context, userID, email, code string) error {
	now, err := attributevalue.Marshal(stamp())
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(r.usersTable),
				Key:                 strKey(fieldUserID, userID),
				UpdateExpression:    aws.String("SET #v = :true, #u = :now"),
				ConditionExpression: aws.String("attribute_exists(user_id) AND #v = :false"),
				ExpressionAttributeNames: map[string]string{
					"#v": fieldVerified,
					"#u": fieldUpdatedAt,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":true":  &types.AttributeValueMemberBOOL{Value: true},
					":false": &types.AttributeValueMemberBOOL{Value: false},
					":now":   now,
				},
			}},
			{Delete: &types.Delete{
				TableName:                aws.String(r.tableName),
				Key:                      strKey(fieldEmail, email),
				ConditionExpression:      aws.String("#c = :code"),
				ExpressionAttributeNames: map[string]string{"#c": fieldCode},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":code": strVal(code),
				},
			}},
		},
	})
	if err != nil {
		return verifyTxError(err)
	}
	return nil
}

// verifyTxError maps a cancelled verify transaction onto the domain outcome.
// Reasons are positional: index 0 is the user update, index 1 the OTP delete.
func verifyTxError(err error) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return fmt.Errorf("verify transaction: %w", err)
	}
	reasons := tce.CancellationReasons
	if len(reasons) > 0 && aws.ToString(reasons[0].Code) == "ConditionalCheckFailed" {
		return fmt.Errorf("verify transaction: %w", domain.ErrAlreadyVerified)
	}
	if len(reasons) > 1 && aws.ToString(reasons[1].Code) == "ConditionalCheckFailed" {
		return fmt.Errorf("verify transaction: %w", domain.ErrInvalidOTP)
	}
	return fmt.Errorf("verify transaction cancelled: %w", err)
}
