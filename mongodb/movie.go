package mongodb

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"filmes/movie"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultCollection is the collection movies are stored in.
const DefaultCollection = "filmes"

// movieDocument is the BSON shape of a movie.
type movieDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"nome"`
	Genre       string             `bson:"genero"`
	Director    string             `bson:"diretor"`
	ReleaseYear flexInt            `bson:"anoLancamento"`
	IMDBRating  flexInt            `bson:"notaIMDB"`
}

// flexInt is written as a BSON integer but reads any numeric BSON value,
// so documents inserted by older clients with string or double fields
// still load. Fractions are rounded; null and non-numeric values read as 0.
type flexInt int

func (n *flexInt) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Int32:
		*n = flexInt(v.Int32())
	case bsontype.Int64:
		*n = flexInt(v.Int64())
	case bsontype.Double:
		*n = roundInt(v.Double())
	case bsontype.Decimal128:
		f, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = roundInt(f)
	case bsontype.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.StringValue()), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = roundInt(f)
	default:
		*n = 0
	}
	return nil
}

func roundInt(f float64) flexInt {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return flexInt(math.Round(f))
}

func (d movieDocument) toMovie() movie.Movie {
	return movie.Movie{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Genre:       d.Genre,
		Director:    d.Director,
		ReleaseYear: int(d.ReleaseYear),
		IMDBRating:  int(d.IMDBRating),
	}
}

// MovieRepository implements movie.Repository on a MongoDB collection.
type MovieRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMovieRepository creates a repository over coll. A positive timeout
// bounds every operation whose context has no deadline of its own.
func NewMovieRepository(coll *mongo.Collection, timeout time.Duration) *MovieRepository {
	return &MovieRepository{coll: coll, timeout: timeout}
}

func (r *MovieRepository) AllMovies(ctx context.Context) ([]movie.Movie, error) {
	return r.find(ctx, bson.M{})
}

func (r *MovieRepository) MoviesByID(ctx context.Context, id string) ([]movie.Movie, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$eq": oid}})
}

// SearchMovies matches name as a case-insensitive substring of nome.
func (r *MovieRepository) SearchMovies(ctx context.Context, name string) ([]movie.Movie, error) {
	return r.find(ctx, bson.M{
		"nome": bson.M{"$regex": regexp.QuoteMeta(name), "$options": "i"},
	})
}

func (r *MovieRepository) CreateMovie(ctx context.Context, m movie.Movie) (movie.InsertResult, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := movieDocument{
		Name:        m.Name,
		Genre:       m.Genre,
		Director:    m.Director,
		ReleaseYear: flexInt(m.ReleaseYear),
		IMDBRating:  flexInt(m.IMDBRating),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return movie.InsertResult{}, storageError(err)
	}

	result := movie.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.InsertedID = oid.Hex()
	}
	return result, nil
}

func (r *MovieRepository) UpdateMovie(ctx context.Context, m movie.Movie) (movie.UpdateResult, error) {
	oid, err := objectID(m.ID)
	if err != nil {
		return movie.UpdateResult{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": bson.M{"$eq": oid}},
		bson.M{"$set": bson.M{
			"nome":          m.Name,
			"anoLancamento": m.ReleaseYear,
			"diretor":       m.Director,
			"genero":        m.Genre,
			"notaIMDB":      m.IMDBRating,
		}},
	)
	if err != nil {
		return movie.UpdateResult{}, storageError(err)
	}

	result := movie.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		result.UpsertedID = oid.Hex()
	}
	return result, nil
}

func (r *MovieRepository) DeleteMovie(ctx context.Context, id string) (movie.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return movie.DeleteResult{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": bson.M{"$eq": oid}})
	if err != nil {
		return movie.DeleteResult{}, storageError(err)
	}
	return movie.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// Ping checks that the primary is reachable.
func (r *MovieRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *MovieRepository) find(ctx context.Context, filter bson.M) ([]movie.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, storageError(err)
	}

	var docs []movieDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError(err)
	}

	movies := make([]movie.Movie, len(docs))
	for i, doc := range docs {
		movies[i] = doc.toMovie()
	}
	return movies, nil
}

func (r *MovieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", movie.ErrInvalidID, id)
	}
	return oid, nil
}
