package collectparameters

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"

	"lex-build-workers/internal/common/config"
)

var notFound = types.ResourceNotFoundException{Message: aws.String("intent already deleted")}

func testAppConfig() *config.Config {
	app := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, Timeout: 90000},
	}}
	app.AWS.S3.BundleBucket = "bundles"
	return app
}
