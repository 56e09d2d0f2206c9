// internal/common/artifacts/factory.go
package artifacts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/database"
)

// NewRepository builds the backend named by repository.backend. The
// returned closer releases any connection pool.
func NewRepository(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (Repository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Repository.Backend {
	case "dynamodb", "":
		return NewDynamoDBRepository(dynamodb.NewFromConfig(awsCfg), cfg.AWS.DynamoDB.ArtifactTable), noop, nil
	case "postgres":
		db, err := database.OpenPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresRepository(db), db.Close, nil
	case "memory":
		return NewMemoryRepository(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown repository backend %q", cfg.Repository.Backend)
	}
}
