package store

import (
	"context"
	"fmt"
	"strconv"

	"filmes/dynamodb"
	"filmes/mongodb"
	"filmes/movie"
	"filmes/pkg/config"
	"filmes/postgres"

	"go.uber.org/zap"
)

// Store is a movie repository that can report its health.
type Store interface {
	movie.Repository
	Ping(ctx context.Context) error
}

// CloseFunc releases the connection behind a Store.
type CloseFunc func(ctx context.Context) error

// Open connects to the backend selected by cfg.DB.Driver.
func Open(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (Store, CloseFunc, error) {
	switch cfg.DB.Driver {
	case config.DriverMongoDB, "":
		client, err := mongodb.NewConnection(ctx, mongodb.Options{
			URI:            cfg.Mongo.URI,
			ConnectTimeout: cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		log.Infow("using mongodb store", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		return mongodb.NewMovieRepository(coll, cfg.Mongo.Timeout), client.Disconnect, nil

	case config.DriverPostgres:
		db, err := postgres.NewConnection(postgres.Options{
			DBName:   cfg.DB.Name,
			DBUser:   cfg.DB.User,
			Password: cfg.DB.Pass,
			Host:     cfg.DB.Host,
			Port:     strconv.Itoa(cfg.DB.Port),
			SSLMode:  cfg.DB.EnableSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Infow("using postgres store", "host", cfg.DB.Host, "database", cfg.DB.Name)
		return postgres.NewMovieRepository(db), func(context.Context) error { return sqlDB.Close() }, nil

	case config.DriverDynamoDB:
		repo, err := dynamodb.NewMovieStore(ctx, dynamodb.Options{
			Region:       cfg.DynamoDB.Region,
			Endpoint:     cfg.DynamoDB.Endpoint,
			AccessKey:    cfg.DynamoDB.AccessKey,
			SecretKey:    cfg.DynamoDB.SecretKey,
			SessionToken: cfg.DynamoDB.SessionToken,
			MoviesTable:  cfg.DynamoDB.MoviesTable,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Infow("using dynamodb store", "region", cfg.DynamoDB.Region, "table", cfg.DynamoDB.MoviesTable)
		return repo, func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("store: unsupported driver %q", cfg.DB.Driver)
}
