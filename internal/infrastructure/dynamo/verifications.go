package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/peachlease/edu-verify/internal/domain"
)

// ItemAPI is the subset of the DynamoDB client the verification repo uses.
type ItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// VerificationRepo stores email verification codes.
// PK: email, SK: code. Every issued code is its own item, so older codes
// for the same email stay valid until their own expiry.
type VerificationRepo struct {
	client    ItemAPI
	tableName string
}

func NewVerificationRepo(client ItemAPI, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// Create inserts v. It never overwrites: an existing item with the same
// email and code yields domain.ErrConflict.
func (r *VerificationRepo) Create(ctx context.Context, v *domain.EmailVerification) error {
	input, err := r.createInput(v)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, input)
	if isConditionFailed(err) {
		return fmt.Errorf("verification code already issued for email: %w", domain.ErrConflict)
	}
	return err
}

// Consume flips verified to true on the item matching email and code, provided
// it is unverified and unexpired at now. The check and the write are one
// conditional UpdateItem, so concurrent callers cannot both succeed.
// A failed condition or a missing item yields domain.ErrNotFound.
func (r *VerificationRepo) Consume(ctx context.Context, email, code string, now time.Time) error {
	input, err := r.consumeInput(email, code, now)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, input)
	if isConditionFailed(err) {
		return fmt.Errorf("no consumable verification: %w", domain.ErrNotFound)
	}
	return err
}

func (r *VerificationRepo) createInput(v *domain.EmailVerification) (*dynamodb.PutItemInput, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal verification: %w", err)
	}
	return &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attrEmail,
		},
	}, nil
}

func (r *VerificationRepo) consumeInput(email, code string, now time.Time) (*dynamodb.UpdateItemInput, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		attrVerified:   true,
		attrVerifiedAt: now.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	ue.Names["#pk"] = attrEmail
	ue.Names["#ver"] = attrVerified
	ue.Names["#exp"] = attrExpiresAt
	ue.Values[":unverified"] = &types.AttributeValueMemberBOOL{Value: false}
	ue.Values[":now"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.UnixMilli())}

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey(attrEmail, email, attrCode, code),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk) AND #ver = :unverified AND #exp > :now"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
