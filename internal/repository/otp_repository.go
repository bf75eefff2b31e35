package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound means no code exists for the email, it expired, or it was
// already consumed.
var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository stores one-time email verification codes.
type OTPRepository interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume atomically fetches and deletes the code for the email. A code
	// redeems at most once.
	Consume(ctx context.Context, email string) (string, error)
}

type otpRepository struct {
	client *redis.Client
}

// NewOTPRepository returns a Redis-backed implementation.
func NewOTPRepository(client *redis.Client) OTPRepository {
	return &otpRepository{client: client}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

func (r *otpRepository) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return r.client.Set(ctx, otpKey(email), code, ttl).Err()
}

func (r *otpRepository) Consume(ctx context.Context, email string) (string, error) {
	code, err := r.client.GetDel(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}
