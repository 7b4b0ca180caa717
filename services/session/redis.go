package sessionsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*redisStore)(nil)

// NewRedisStore connects to the redis:// URL. Sessions expire through the key TTL.
func NewRedisStore(url string, ttl time.Duration) (*redisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	return &redisStore{client: redis.NewClient(opts), ttl: ttl}, nil
}

func (s *redisStore) Create(ctx context.Context, userID string) (string, error) {
	sid, err := newSID()
	if err != nil {
		return "", err
	}
	val, err := json.Marshal(Data{UserID: userID, CreatedAt: nowFunc().UTC()})
	if err != nil {
		return "", errors.Wrap(err, "encoding session")
	}
	if err = s.client.Set(ctx, redisKeyPrefix+sid, val, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "storing session")
	}
	return sid, nil
}

func (s *redisStore) Get(ctx context.Context, sid string) (Data, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+sid).Bytes()
	if err == redis.Nil {
		return Data{}, ErrNotFound
	} else if err != nil {
		return Data{}, errors.Wrap(err, "reading session")
	}
	var data Data
	if err = json.Unmarshal(val, &data); err != nil {
		return Data{}, errors.Wrap(err, "decoding session")
	}
	return data, nil
}

func (s *redisStore) Delete(ctx context.Context, sid string) error {
	return errors.Wrap(s.client.Del(ctx, redisKeyPrefix+sid).Err(), "deleting session")
}

// PingContext checks that redis answers.
func (s *redisStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
