package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"filmes/errs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultConnectTimeout = 10 * time.Second

type Options struct {
	URI            string
	ConnectTimeout time.Duration
}

// NewConnection connects to MongoDB and verifies the connection with a ping.
// The caller owns the client and must Disconnect it on shutdown.
func NewConnection(ctx context.Context, opts Options) (*mongo.Client, error) {
	uri := strings.TrimSpace(opts.URI)
	if uri == "" {
		return nil, errors.New("mongodb: uri is required")
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client, nil
}

// storageError converts a driver error into an errs.ESTORAGE error whose
// detail mirrors the server's error document.
func storageError(err error) error {
	detail := map[string]interface{}{
		"message": err.Error(),
	}

	var (
		cmdErr   mongo.CommandError
		writeErr mongo.WriteException
	)
	switch {
	case errors.As(err, &cmdErr):
		detail["code"] = cmdErr.Code
		detail["codeName"] = cmdErr.Name
	case errors.As(err, &writeErr):
		if len(writeErr.WriteErrors) > 0 {
			we := writeErr.WriteErrors[0]
			detail["index"] = we.Index
			detail["code"] = we.Code
			detail["message"] = we.Message
		}
		if wce := writeErr.WriteConcernError; wce != nil {
			detail["writeConcernError"] = map[string]interface{}{
				"code":     wce.Code,
				"codeName": wce.Name,
				"message":  wce.Message,
			}
		}
	}

	return errs.Wrap(errs.ESTORAGE, err, detail)
}
