package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmMaxBatchSize is the SSM GetParameters limit per call.
const ssmMaxBatchSize = 10

// ssmClient is the subset of the SSM SDK client used by SSMProvider.
type ssmClient interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// SSMProvider resolves secrets from AWS Systems Manager Parameter Store.
// The parameter name for a key is prefix + key, e.g. /airdash/prod/DATABASE_URL.
type SSMProvider struct {
	region string
	prefix string

	// client is created lazily when nil.
	client ssmClient
}

// NewSSMProvider creates a provider reading parameters under prefix in region.
func NewSSMProvider(region, prefix string) *SSMProvider {
	return &SSMProvider{
		region: region,
		prefix: normalizePrefix(prefix),
	}
}

func newSSMProviderWithClient(prefix string, client ssmClient) *SSMProvider {
	return &SSMProvider{
		prefix: normalizePrefix(prefix),
		client: client,
	}
}

func normalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// Name implements SecretProvider.
func (p *SSMProvider) Name() string {
	return "ssm:" + p.prefix
}

func (p *SSMProvider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return fmt.Errorf("loading AWS config for SSM (region=%s): %w", p.region, err)
	}

	p.client = ssm.NewFromConfig(cfg)
	return nil
}

// GetSecrets implements SecretProvider. Parameters SSM does not know are
// skipped so the environment can still supply them.
func (p *SSMProvider) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(keys))
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := p.prefix + key
		byName[name] = key
		names = append(names, name)
	}

	for i := 0; i < len(names); i += ssmMaxBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during SSM parameter retrieval: %w", err)
		}

		end := min(i+ssmMaxBatchSize, len(names))
		output, err := p.client.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          names[i:end],
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("SSM GetParameters failed (batch %d-%d of %d): %w", i, end-1, len(names), err)
		}

		for _, param := range output.Parameters {
			name := aws.ToString(param.Name)
			if key, ok := byName[name]; ok {
				result[key] = aws.ToString(param.Value)
			}
		}
	}

	return result, nil
}

var _ SecretProvider = (*SSMProvider)(nil)
