package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/sirupsen/logrus"

	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

// TranslateTextAPI is the part of the AWS Translate client this provider uses
type TranslateTextAPI interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// CloudConfig holds AWS region and static credentials
type CloudConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Cloud calls AWS Translate
type Cloud struct {
	cfg       CloudConfig
	log       logrus.FieldLogger
	newClient func(ctx context.Context) (TranslateTextAPI, error)

	mu      sync.Mutex
	client  TranslateTextAPI
	initErr error
}

// NewCloud creates the cloud provider. The AWS client is built on first use.
func NewCloud(cfg CloudConfig, log logrus.FieldLogger) *Cloud {
	c := &Cloud{
		cfg: cfg,
		log: log.WithField("provider", model.MethodCloud),
	}
	c.newClient = c.buildClient
	return c
}

// NewCloudWithClient creates the cloud provider over an existing client
func NewCloudWithClient(client TranslateTextAPI, log logrus.FieldLogger) *Cloud {
	c := &Cloud{log: log.WithField("provider", model.MethodCloud)}
	c.newClient = func(context.Context) (TranslateTextAPI, error) { return client, nil }
	return c
}

func (c *Cloud) Method() model.Method { return model.MethodCloud }

func (c *Cloud) Kind() language.Kind { return language.KindCloud }

// Configured reports whether region and credentials are present
func (c *Cloud) Configured() bool {
	return c.cfg.Region != "" && c.cfg.AccessKeyID != "" && c.cfg.SecretAccessKey != ""
}

func (c *Cloud) Translate(ctx context.Context, text, languageName, code string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text cannot be empty")
	}

	client, err := c.clientFor(ctx)
	if err != nil {
		return "", err
	}

	out, err := client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(SourceCloudCode),
		TargetLanguageCode: aws.String(code),
	})
	if err != nil {
		return "", fmt.Errorf("aws translate: %w", err)
	}

	translated := strings.TrimSpace(aws.ToString(out.TranslatedText))
	if translated == "" {
		return "", fmt.Errorf("aws translate: %w", ErrEmptyResponse)
	}
	return translated, nil
}

// clientFor returns the shared client, building it on first use.
// Only a missing configuration is remembered; other failures are retried on the next call.
func (c *Cloud) clientFor(ctx context.Context) (TranslateTextAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.initErr != nil {
		return nil, c.initErr
	}

	// the client outlives this request, so it must not inherit its deadline
	client, err := c.newClient(context.WithoutCancel(ctx))
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			c.initErr = err
		}
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *Cloud) buildClient(ctx context.Context) (TranslateTextAPI, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("aws translate requires region and credentials: %w", ErrNotConfigured)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.cfg.AccessKeyID, c.cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	c.log.WithField("region", c.cfg.Region).Info("AWS Translate client initialised")
	return translate.NewFromConfig(awsCfg), nil
}
