package s3Store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository"
	"github.com/KotFed0t/portfolio_ledger/internal/converter/docConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the part of *s3.Client the store needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the portfolio as one object. The object ETag is the version token and
// writes carry If-Match / If-None-Match preconditions.
type S3Store struct {
	client S3API
	bucket string
	key    string
}

func New(client S3API, cfg *config.Config) *S3Store {
	return &S3Store{client: client, bucket: cfg.S3.Bucket, key: cfg.S3.Key}
}

func (s *S3Store) GetPortfolio(ctx context.Context) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "S3Store.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("bucket", s.bucket), slog.String("key", s.key))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", portfolio.Version))
		}
	}()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			slog.Info("portfolio object not found, starting empty", slog.String("rqID", rqID), slog.String("op", op))
			return model.NewPortfolio(), nil
		}
		return model.Portfolio{}, fmt.Errorf("%w: get object: %w", repository.ErrStorageUnavailable, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: read body: %w", repository.ErrStorageUnavailable, err)
	}

	portfolio, _, err = docConverter.Decode(data)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: decode: %w", repository.ErrStorageUnavailable, err)
	}
	portfolio.Version = aws.ToString(out.ETag)

	return portfolio, nil
}

func (s *S3Store) PutPortfolio(ctx context.Context, portfolio model.Portfolio, expectedVersion string) (version string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "S3Store.PutPortfolio"

	slog.Debug("PutPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("expectedVersion", expectedVersion))
	defer func() {
		if err != nil {
			slog.Error("PutPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("PutPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", version))
		}
	}()

	payload, err := docConverter.Encode(portfolio, "")
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", repository.ErrStorageUnavailable, err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	}
	if expectedVersion == "" {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(expectedVersion)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		if isPreconditionFailure(err) {
			return "", fmt.Errorf("%w: %w", repository.ErrConflict, err)
		}
		return "", fmt.Errorf("%w: put object: %w", repository.ErrStorageUnavailable, err)
	}

	return aws.ToString(out.ETag), nil
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}

// isPreconditionFailure reports a failed If-Match / If-None-Match (412) or a concurrent
// conditional write to the same key (409).
func isPreconditionFailure(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	default:
		return false
	}
}
