package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"filmes/errs"
	"filmes/movie"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// API is the subset of the DynamoDB client used by the repositories.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type MovieRepository struct {
	client API
	table  string
}

// movieItem keeps a lower-cased copy of the name in nome_busca because
// contains() in filter expressions is case-sensitive.
type movieItem struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"nome"`
	SearchName  string `dynamodbav:"nome_busca"`
	Genre       string `dynamodbav:"genero"`
	Director    string `dynamodbav:"diretor"`
	ReleaseYear int    `dynamodbav:"anoLancamento"`
	IMDBRating  int    `dynamodbav:"notaIMDB"`
}

func NewMovieRepository(client API, table string) *MovieRepository {
	return &MovieRepository{
		client: client,
		table:  table,
	}
}

func (r *MovieRepository) AllMovies(ctx context.Context) ([]movie.Movie, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: &r.table})
}

func (r *MovieRepository) MoviesByID(ctx context.Context, id string) ([]movie.Movie, error) {
	if err := validateTable(r.table); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storageError(err)
	}
	if len(out.Item) == 0 {
		return []movie.Movie{}, nil
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}
	return []movie.Movie{item.toMovie()}, nil
}

// SearchMovies matches name as a case-insensitive substring of nome.
func (r *MovieRepository) SearchMovies(ctx context.Context, name string) ([]movie.Movie, error) {
	if name == "" {
		return r.AllMovies(ctx)
	}
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:        &r.table,
		FilterExpression: aws.String("contains(nome_busca, :q)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberS{Value: strings.ToLower(name)},
		},
	})
}

func (r *MovieRepository) CreateMovie(ctx context.Context, m movie.Movie) (movie.InsertResult, error) {
	if err := validateTable(r.table); err != nil {
		return movie.InsertResult{}, err
	}

	item := movieItem{
		ID:          uuid.NewString(),
		Name:        m.Name,
		SearchName:  strings.ToLower(m.Name),
		Genre:       m.Genre,
		Director:    m.Director,
		ReleaseYear: m.ReleaseYear,
		IMDBRating:  m.IMDBRating,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return movie.InsertResult{}, fmt.Errorf("dynamodb: marshal movie: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.table,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return movie.InsertResult{}, storageError(err)
	}

	return movie.InsertResult{Acknowledged: true, InsertedID: item.ID}, nil
}

func (r *MovieRepository) UpdateMovie(ctx context.Context, m movie.Movie) (movie.UpdateResult, error) {
	if err := validateTable(r.table); err != nil {
		return movie.UpdateResult{}, err
	}
	if err := validateID(m.ID); err != nil {
		return movie.UpdateResult{}, err
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           &r.table,
		Key:                 idKey(m.ID),
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression: aws.String("SET nome = :nome, nome_busca = :busca, genero = :genero, " +
			"diretor = :diretor, anoLancamento = :ano, notaIMDB = :nota"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":nome":    &types.AttributeValueMemberS{Value: m.Name},
			":busca":   &types.AttributeValueMemberS{Value: strings.ToLower(m.Name)},
			":genero":  &types.AttributeValueMemberS{Value: m.Genre},
			":diretor": &types.AttributeValueMemberS{Value: m.Director},
			":ano":     &types.AttributeValueMemberN{Value: strconv.Itoa(m.ReleaseYear)},
			":nota":    &types.AttributeValueMemberN{Value: strconv.Itoa(m.IMDBRating)},
		},
	})

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return movie.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return movie.UpdateResult{}, storageError(err)
	}

	return movie.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *MovieRepository) DeleteMovie(ctx context.Context, id string) (movie.DeleteResult, error) {
	if err := validateTable(r.table); err != nil {
		return movie.DeleteResult{}, err
	}
	if err := validateID(id); err != nil {
		return movie.DeleteResult{}, err
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    &r.table,
		Key:          idKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return movie.DeleteResult{}, storageError(err)
	}

	result := movie.DeleteResult{Acknowledged: true}
	if len(out.Attributes) > 0 {
		result.DeletedCount = 1
	}
	return result, nil
}

func (r *MovieRepository) Ping(ctx context.Context) error {
	if err := validateTable(r.table); err != nil {
		return err
	}
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &r.table})
	return err
}

func (r *MovieRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]movie.Movie, error) {
	if err := validateTable(r.table); err != nil {
		return nil, err
	}

	movies := []movie.Movie{}
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storageError(err)
		}

		var items []movieItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("dynamodb: unmarshal movies: %w", err)
		}
		for _, item := range items {
			movies = append(movies, item.toMovie())
		}
	}

	return movies, nil
}

func (i movieItem) toMovie() movie.Movie {
	return movie.Movie{
		ID:          i.ID,
		Name:        i.Name,
		Genre:       i.Genre,
		Director:    i.Director,
		ReleaseYear: i.ReleaseYear,
		IMDBRating:  i.IMDBRating,
	}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", movie.ErrInvalidID, id)
	}
	return nil
}

func storageError(err error) error {
	detail := map[string]interface{}{
		"message": err.Error(),
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		detail["code"] = apiErr.ErrorCode()
		detail["message"] = apiErr.ErrorMessage()
	}

	return errs.Wrap(errs.ESTORAGE, err, detail)
}
