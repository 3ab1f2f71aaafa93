package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreLoadMissingIsIdle(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("chat:session:s1").RedisNil()

	sess, err := NewRedisStore(rdb, time.Hour, 10).Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, &Session{}, sess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreLoadErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedisStore(rdb, time.Hour, 10)
	ctx := context.Background()

	mock.ExpectGet("chat:session:s1").SetErr(errors.New("READONLY You can't write against a read only replica"))
	_, err := store.Load(ctx, "s1")
	assert.ErrorContains(t, err, "load session")

	mock.ExpectGet("chat:session:s1").SetVal("{not json")
	_, err = store.Load(ctx, "s1")
	assert.ErrorContains(t, err, "decode session")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreSaveUsesTTL(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sess := &Session{Location: "Yaba, Lagos", Name: "Ada"}
	raw, err := json.Marshal(sess)
	require.NoError(t, err)

	mock.ExpectSet("chat:session:s1", raw, 2*time.Hour).SetVal("OK")
	require.NoError(t, NewRedisStore(rdb, 2*time.Hour, 10).Save(context.Background(), "s1", sess))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreDeleteError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel("chat:session:s1", "chat:history:s1").SetErr(errors.New("connection reset"))

	err := NewRedisStore(rdb, time.Hour, 10).Delete(context.Background(), "s1")
	assert.ErrorContains(t, err, "delete session")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreHistoryDecodeError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectLRange("chat:history:s1", 0, -1).SetVal([]string{`{"role":"user","text":"hi"}`, "garbage"})

	_, err := NewRedisStore(rdb, time.Hour, 10).History(context.Background(), "s1")
	assert.ErrorContains(t, err, "decode message")
	assert.NoError(t, mock.ExpectationsWereMet())
}
