package mongoutil

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config represents the MongoDB connection settings.
type Config struct {
	URI         string
	Database    string
	MaxPoolSize int
	MaxRetry    int
}

type Client struct {
	db *mongo.Database
}

func (c *Client) DB() *mongo.Database {
	return c.db
}

func applyConfigToOptions(cfg *Config) (*options.ClientOptions, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	return opts, nil
}

// NewClient connects and pings, retrying transient failures MaxRetry times.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	opts, err := applyConfigToOptions(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 1
	}

	var cli *mongo.Client
	for i := 0; i < cfg.MaxRetry; i++ {
		cli, err = connect(ctx, opts)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		time.Sleep(time.Second / 2)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connect to mongodb %s", cfg.URI)
	}
	return &Client{db: cli.Database(cfg.Database)}, nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return cli, nil
}
